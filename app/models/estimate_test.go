package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateStatusProgression(t *testing.T) {
	e := &Estimate{Status: EstimateStatusDraft}

	e.MarkSent()
	assert.Equal(t, EstimateStatusSent, e.Status)

	e.MarkViewed()
	assert.Equal(t, EstimateStatusViewed, e.Status)

	now := time.Now()
	assert.NoError(t, e.ApplyClientResponse(true, "looks good", now))
	assert.Equal(t, EstimateStatusAccepted, e.Status)
	assert.Equal(t, "looks good", e.ClientNotes)
	assert.NotNil(t, e.ClientResponseAt)
}

func TestEstimateSecondResponseRejected(t *testing.T) {
	e := &Estimate{Status: EstimateStatusSent}
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.NoError(t, e.ApplyClientResponse(true, "yes", first))

	err := e.ApplyClientResponse(false, "changed my mind", first.Add(time.Hour))
	assert.ErrorIs(t, err, ErrEstimateAlreadyResponded)
	// The terminal state must stay untouched.
	assert.Equal(t, EstimateStatusAccepted, e.Status)
	assert.Equal(t, "yes", e.ClientNotes)
	assert.Equal(t, first, *e.ClientResponseAt)
}

func TestEstimateConvertRequiresAccepted(t *testing.T) {
	e := &Estimate{Status: EstimateStatusSent}
	assert.Error(t, e.MarkConverted())

	e.Status = EstimateStatusAccepted
	assert.NoError(t, e.MarkConverted())
	assert.Equal(t, EstimateStatusConverted, e.Status)

	// Converted is terminal too.
	err := e.ApplyClientResponse(false, "", time.Now())
	assert.ErrorIs(t, err, ErrEstimateAlreadyResponded)
}

func TestEstimateViewedOnlyFromSent(t *testing.T) {
	e := &Estimate{Status: EstimateStatusDraft}
	e.MarkViewed()
	assert.Equal(t, EstimateStatusDraft, e.Status)
}
