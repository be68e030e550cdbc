package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"default", Config{}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"quiet wins over verbose", Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit level wins", Config{Verbose: true, LogLevel: "error"}, "error"},
		{"invalid level falls back", Config{LogLevel: "loud"}, "info"},
		{"env level", Config{LogLevel: "debug"}, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{Format: "table", LogLevel: "info"}

	config.UpdateFromFlags(true, false, true, "", "")

	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "table", config.Format, "empty flag keeps configured format")
	assert.Equal(t, "info", config.LogLevel)

	config.UpdateFromFlags(false, false, false, "json", "debug")
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "debug", config.LogLevel)
}
