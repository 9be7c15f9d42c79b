package waittime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModelFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileScorer_Score(t *testing.T) {
	path := writeModelFile(t, `{
		"intercept": 10.0,
		"coefficients": {
			"hour": 1.0,
			"weekday": 2.0,
			"service_avg_minutes": 0.5,
			"queue_length": 3.0,
			"counters_active": -2.0,
			"priority": -1.0
		}
	}`)

	scorer := NewFileScorer(path)
	raw, err := scorer.Score(context.Background(), Features{
		Hour:              9,
		Weekday:           2,
		ServiceAvgMinutes: 20,
		QueueLength:       4,
		CountersActive:    3,
		PriorityLevel:     1,
	})

	require.NoError(t, err)
	// 10 + 9 + 4 + 10 + 12 - 6 - 1 = 38
	assert.InDelta(t, 38.0, raw, 0.001)
}

func TestFileScorer_MissingFile(t *testing.T) {
	scorer := NewFileScorer(filepath.Join(t.TempDir(), "absent.json"))

	_, err := scorer.Score(context.Background(), Features{})
	require.Error(t, err)

	// Ошибка загрузки фиксируется и возвращается повторно
	_, err2 := scorer.Score(context.Background(), Features{})
	assert.Equal(t, err, err2)
}

func TestFileScorer_MalformedFile(t *testing.T) {
	path := writeModelFile(t, `{not json`)
	scorer := NewFileScorer(path)

	_, err := scorer.Score(context.Background(), Features{})
	assert.Error(t, err)
}
