// Package locking serializes writers that touch the same doctor's day.
package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrLockHeld is returned when the lock stayed taken for the whole wait.
var ErrLockHeld = errors.New("lock is held by another writer")

// DefaultWait bounds how long Acquire waits for a held lock.
const DefaultWait = 5 * time.Second

// ReleaseFunc gives the lock back. Releasing twice is harmless.
type ReleaseFunc func(ctx context.Context) error

// Locker grants exclusive, expiring locks on string keys.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// DoctorDayKey names the lock guarding one doctor's UTC calendar day.
func DoctorDayKey(doctorID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("doctor:%s:%s", doctorID, day.UTC().Format("2006-01-02"))
}

// DoctorDayKeys returns the keys of every UTC day that [start, end) touches,
// in ascending order. Two overlapping intervals always share a key.
func DoctorDayKeys(doctorID uuid.UUID, start, end time.Time) []string {
	first := start.UTC()
	first = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	keys := []string{DoctorDayKey(doctorID, first)}
	for day := first.AddDate(0, 0, 1); day.Before(end); day = day.AddDate(0, 0, 1) {
		keys = append(keys, DoctorDayKey(doctorID, day))
	}
	return keys
}

// AcquireAll takes keys in the given order. On failure the keys already
// taken are released. The returned func releases them in reverse order.
func AcquireAll(ctx context.Context, locker Locker, keys []string, ttl time.Duration) (ReleaseFunc, error) {
	releases := make([]ReleaseFunc, 0, len(keys))
	releaseAll := func(ctx context.Context) error {
		var errs []error
		for i := len(releases) - 1; i >= 0; i-- {
			errs = append(errs, releases[i](ctx))
		}
		return errors.Join(errs...)
	}

	for _, key := range keys {
		release, err := locker.Acquire(ctx, key, ttl)
		if err != nil {
			_ = releaseAll(context.WithoutCancel(ctx))
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}
