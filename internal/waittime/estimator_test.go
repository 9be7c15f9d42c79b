package waittime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type stubScorer struct {
	raw      float64
	err      error
	features *Features
}

func (s *stubScorer) Score(_ context.Context, f Features) (float64, error) {
	s.features = &f
	return s.raw, s.err
}

type stubMetrics struct {
	strategies []string
}

func (m *stubMetrics) IncWaitEstimate(strategy string) {
	m.strategies = append(m.strategies, strategy)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestFallback(t *testing.T) {
	tests := []struct {
		name string
		ec   Context
		want int
	}{
		{
			name: "normal priority with queue",
			ec:   Context{ServiceAvgMinutes: 20, NearbyAppointments: 4, Priority: domain.PriorityNormal},
			want: 40,
		},
		{
			name: "empty queue uses base",
			ec:   Context{ServiceAvgMinutes: 20, NearbyAppointments: 0, Priority: domain.PriorityNormal},
			want: 20,
		},
		{
			name: "queue factor below one clamps to one",
			ec:   Context{ServiceAvgMinutes: 20, NearbyAppointments: 1, Priority: domain.PriorityNormal},
			want: 20,
		},
		{
			name: "emergency quarters the estimate",
			ec:   Context{ServiceAvgMinutes: 20, NearbyAppointments: 4, Priority: domain.PriorityEmergency},
			want: 10,
		},
		{
			name: "emergency floor at five",
			ec:   Context{ServiceAvgMinutes: 10, NearbyAppointments: 0, Priority: domain.PriorityEmergency},
			want: 5,
		},
		{
			name: "elderly halves the estimate",
			ec:   Context{ServiceAvgMinutes: 20, NearbyAppointments: 4, Priority: domain.PriorityElderly},
			want: 20,
		},
		{
			name: "disabled floor at ten",
			ec:   Context{ServiceAvgMinutes: 10, NearbyAppointments: 0, Priority: domain.PriorityDisabled},
			want: 10,
		},
		{
			name: "capped at eight times base",
			ec:   Context{ServiceAvgMinutes: 10, NearbyAppointments: 30, Priority: domain.PriorityNormal},
			want: 80,
		},
		{
			name: "truncation only at the end",
			ec:   Context{ServiceAvgMinutes: 15, NearbyAppointments: 3, Priority: domain.PriorityNormal},
			want: 22, // 15 * 1.5 = 22.5
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(tt.ec))
		})
	}
}

func TestEstimate_ModelStrategy(t *testing.T) {
	scorer := &stubScorer{raw: 37.6}
	m := &stubMetrics{}
	e := New(scorer, 3, m, nopLogger{})

	got := e.Estimate(context.Background(), Context{
		ServiceAvgMinutes:  20,
		HourOfDay:          10,
		Weekday:            time.Tuesday,
		QueueLength:        5,
		Priority:           domain.PriorityNormal,
		NearbyAppointments: 2,
	})

	assert.Equal(t, 37, got)
	assert.Equal(t, []string{"model"}, m.strategies)
}

func TestEstimate_ClampsModelPrediction(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		avg  int
		want int
	}{
		{name: "below floor", raw: 1, avg: 20, want: 10},
		{name: "floor at least five", raw: 0, avg: 6, want: 5},
		{name: "above ceiling", raw: 500, avg: 20, want: 200},
		{name: "within bounds", raw: 42, avg: 20, want: 42},
		{name: "negative output", raw: -10, avg: 30, want: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(&stubScorer{raw: tt.raw}, 3, nil, nopLogger{})
			got := e.Estimate(context.Background(), Context{ServiceAvgMinutes: tt.avg})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimate_FallbackOnScorerError(t *testing.T) {
	scorer := &stubScorer{err: errors.New("model file corrupted")}
	m := &stubMetrics{}
	e := New(scorer, 3, m, nopLogger{})

	got := e.Estimate(context.Background(), Context{
		ServiceAvgMinutes:  20,
		NearbyAppointments: 4,
		Priority:           domain.PriorityNormal,
	})

	assert.Equal(t, 40, got)
	assert.Equal(t, []string{"fallback"}, m.strategies)
}

func TestEstimate_FallbackWithoutScorer(t *testing.T) {
	m := &stubMetrics{}
	e := New(nil, 3, m, nopLogger{})

	got := e.Estimate(context.Background(), Context{
		ServiceAvgMinutes:  30,
		NearbyAppointments: 2,
		Priority:           domain.PriorityNormal,
	})

	assert.Equal(t, 30, got)
	assert.Equal(t, []string{"fallback"}, m.strategies)
}

func TestEstimate_FillsActiveCountersFromConfig(t *testing.T) {
	scorer := &stubScorer{raw: 30}
	e := New(scorer, 7, nil, nopLogger{})

	e.Estimate(context.Background(), Context{ServiceAvgMinutes: 20})

	assert.NotNil(t, scorer.features)
	assert.Equal(t, 7, scorer.features.CountersActive)
}

func TestEstimate_KeepsExplicitActiveCounters(t *testing.T) {
	scorer := &stubScorer{raw: 30}
	e := New(scorer, 7, nil, nopLogger{})

	e.Estimate(context.Background(), Context{ServiceAvgMinutes: 20, ActiveCounters: 2})

	assert.NotNil(t, scorer.features)
	assert.Equal(t, 2, scorer.features.CountersActive)
}
