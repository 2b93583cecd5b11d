package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRegistry(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		redis  func(context.Context) error
		db     func(context.Context) error
		status HealthStatus
	}{
		{"all healthy", ok, ok, HealthStatusHealthy},
		{"optional component down", down, ok, HealthStatusDegraded},
		{"required component down", ok, down, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewHealthRegistry()
			r.Register("redis", PingChecker("redis", HealthStatusDegraded, tt.redis))
			r.Register("database", PingChecker("database", HealthStatusUnhealthy, tt.db))

			results := r.Check(context.Background())

			require.Len(t, results, 2)
			assert.Equal(t, "database", results[0].Name)
			assert.Equal(t, "redis", results[1].Name)
			assert.Equal(t, tt.status, OverallStatus(results))
		})
	}
}

func TestOverallStatus_Empty(t *testing.T) {
	assert.Equal(t, HealthStatusHealthy, OverallStatus(nil))
}
