package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ForecastKey identifies a forecast by every input that shapes it.
type ForecastKey struct {
	Mode        ForecastMode
	DoctorID    uuid.UUID
	From        time.Time
	To          time.Time
	Today       time.Time
	HorizonDays int
}

// String renders mode:doctor:from:to:today:horizon. A nil doctor is "all".
func (k ForecastKey) String() string {
	doctor := "all"
	if k.DoctorID != uuid.Nil {
		doctor = k.DoctorID.String()
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s:%d",
		k.Mode,
		doctor,
		k.From.Format(time.DateOnly),
		k.To.Format(time.DateOnly),
		k.Today.Format(time.DateOnly),
		k.HorizonDays,
	)
}

// ForecastCache stores computed forecasts. Get reports a miss with ok false
// and a nil error.
type ForecastCache interface {
	Get(ctx context.Context, key ForecastKey) (forecast *Forecast, ok bool, err error)
	Set(ctx context.Context, key ForecastKey, forecast Forecast) error
	Invalidate(ctx context.Context) error
}
