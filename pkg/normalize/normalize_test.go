package normalize

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvkurs/kursmap/pkg/errors"
)

func TestParseEventRecord(t *testing.T) {
	raw := `{
		"templateId": "gruppchef-1",
		"courseDates": [{"start": "2026-09-01", "end": "2026-09-05"}],
		"location": "Vällinge",
		"eventResponsible": "HvSS",
		"spots": 24,
		"status": "open",
		"unknownField": "dropped silently"
	}`

	event, ok := parseEventRecord(raw)
	require.True(t, ok)
	assert.Equal(t, "gruppchef-1", event.TemplateID)
	assert.Equal(t, "Vällinge", event.Location)
	require.NotNil(t, event.Spots)
	assert.Equal(t, 24, *event.Spots)

	// Dates are reduced to the 8-digit form at the boundary.
	require.Len(t, event.CourseDates, 1)
	assert.Equal(t, "20260901", event.CourseDates[0].Start)
	assert.Equal(t, "20260905", event.CourseDates[0].End)
}

func TestParseEventRecordNoRecord(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t"},
		{"explicit null", "null"},
		{"unparseable", "here is the JSON you asked for: {"},
		{"missing template reference", `{"location": "Vällinge"}`},
		{"invalid status", `{"templateId": "gc-1", "status": "maybe"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := parseEventRecord(tt.raw)
			assert.False(t, ok)
			assert.Nil(t, event)
		})
	}
}

func TestParseTemplateRecord(t *testing.T) {
	raw := `{"description": "Grundkurs för gruppchefer.", "prerequisites": ["GU-F"]}`

	template, ok := parseTemplateRecord(raw)
	require.True(t, ok)
	assert.Equal(t, "Grundkurs för gruppchefer.", template.Description)
	assert.Equal(t, []string{"GU-F"}, template.Prerequisites)
}

func TestParseTemplateRecordUnwrapsEnvelope(t *testing.T) {
	raw := `{"template": {"description": "Inlindad beskrivning"}}`

	template, ok := parseTemplateRecord(raw)
	require.True(t, ok)
	assert.Equal(t, "Inlindad beskrivning", template.Description)
}

func TestParseTemplateRecordNoRecord(t *testing.T) {
	for _, raw := range []string{"", "null", "not json"} {
		template, ok := parseTemplateRecord(raw)
		assert.False(t, ok, "raw %q", raw)
		assert.Nil(t, template)
	}
}

func TestRetryPolicySucceedsAfterTransientFailures(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), "test", func() error {
		calls++
		if calls < 3 {
			return errors.NewAPIError("gemini", 429, "rate limited")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyStopsOnPermanentError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond}

	calls := 0
	permanent := errors.NewAPIError("gemini", 400, "bad request")
	err := policy.Do(context.Background(), "test", func() error {
		calls++
		return permanent
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, permanent)
	assert.False(t, errors.IsRetriesExhausted(err))
}

func TestRetryPolicyExhaustion(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), "normalize event", func() error {
		calls++
		return errors.NewAPIError("gemini", 503, "overloaded")
	})

	assert.Equal(t, 3, calls)
	require.True(t, errors.IsRetriesExhausted(err))

	var exhausted *errors.ExhaustedRetriesError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "normalize event", exhausted.Operation)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.True(t, errors.IsServiceUnavailable(exhausted.Err))
}

func TestRetryPolicyHonorsContext(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, Backoff: time.Minute, MaxBackoff: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := policy.Do(ctx, "test", func() error {
		return errors.NewAPIError("gemini", 429, "rate limited")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
