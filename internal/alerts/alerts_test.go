package alerts

import (
	"testing"

	"github.com/agrisense/farmhub/internal/config"
	"github.com/agrisense/farmhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(config.IngestConfig{
		AlertLowBelow:  15,
		AlertHighAbove: 35,
	})
}

func TestEvaluateLow(t *testing.T) {
	found := newTestEvaluator().Evaluate(10)
	require.Len(t, found, 1)
	assert.Equal(t, models.AlertLevelWarning, found[0].Level)
	assert.Contains(t, found[0].Message, "LOW")
}

func TestEvaluateHigh(t *testing.T) {
	found := newTestEvaluator().Evaluate(40)
	require.Len(t, found, 1)
	assert.Equal(t, models.AlertLevelWarning, found[0].Level)
	assert.Contains(t, found[0].Message, "HIGH")
}

func TestEvaluateNominal(t *testing.T) {
	assert.Empty(t, newTestEvaluator().Evaluate(25))
}

func TestEvaluateThresholdBoundaries(t *testing.T) {
	// Thresholds are exclusive: exactly 15 and exactly 35 are nominal
	e := newTestEvaluator()
	assert.Empty(t, e.Evaluate(15))
	assert.Empty(t, e.Evaluate(35))
	assert.Len(t, e.Evaluate(14.99), 1)
	assert.Len(t, e.Evaluate(35.01), 1)
}
