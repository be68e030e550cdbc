package segment_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvkurs/kursmap/pkg/segment"
)

func TestIsTrigger(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"iso date", "Kursstart 2026-09-01 i Vällinge", true},
		{"dotted date", "2026.09.01", true},
		{"compact date", "Genomförs 20260901", true},
		{"six digit date", "260901", true},
		{"week notation", "Genomförs v. 35", true},
		{"week notation tight", "v.35", true},
		{"plain prose", "Kursen vänder sig till gruppchefer", false},
		{"empty line", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, segment.IsTrigger(tt.line))
		})
	}
}

func TestCandidatesTriggerReset(t *testing.T) {
	// Two triggers closer together than the line ceiling: only the block
	// anchored at the second trigger survives.
	text := strings.Join([]string{
		"2026-01-01",
		"foo",
		"2026-02-01",
		"bar",
		"baz",
	}, "\n")

	blocks := segment.Candidates(text)
	require.Len(t, blocks, 1)
	assert.Equal(t, "2026-02-01\nbar\nbaz", blocks[0])
}

func TestCandidatesCeilingFlush(t *testing.T) {
	lines := []string{
		"2026-03-01",
		"Plats: Vällinge",
		"Antal platser: 20",
		"Anmälan via chef",
		"rad fem",
		"rad sex",
		"efterföljande rad utan buffert",
	}

	blocks := segment.Candidates(strings.Join(lines, "\n"))
	require.Len(t, blocks, 1)

	got := strings.Split(blocks[0], "\n")
	assert.Len(t, got, 6)
	assert.Equal(t, "2026-03-01", got[0])
	// Lines after a flush are dropped until the next trigger.
	assert.NotContains(t, blocks[0], "efterföljande")
}

func TestCandidatesLeadingLinesDropped(t *testing.T) {
	text := "inledning utan datum\nmer text\n2026-05-01\nPlats: Revingehed"

	blocks := segment.Candidates(text)
	require.Len(t, blocks, 1)
	assert.Equal(t, "2026-05-01\nPlats: Revingehed", blocks[0])
}

func TestCandidatesNoTriggers(t *testing.T) {
	blocks := segment.Candidates("bara prosa\nutan några datum alls")
	assert.Empty(t, blocks)
}

func TestCandidatesDeterministic(t *testing.T) {
	text := strings.Repeat("2026-01-01\nPlats: Halmstad\n", 7)
	first := segment.Candidates(text)
	second := segment.Candidates(text)
	assert.Equal(t, first, second)
}

func TestBlocksRestartable(t *testing.T) {
	seq := segment.Blocks("2026-01-01\nPlats: Vällinge")

	var first, second []string
	for b := range seq {
		first = append(first, b)
	}
	for b := range seq {
		second = append(second, b)
	}
	assert.Equal(t, first, second)
	require.Len(t, first, 1)
}

func TestLooksLikeEvent(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  bool
	}{
		{
			"two hints",
			"Plats: Vällinge\nSista ansökningsdag: 2026-08-01",
			true,
		},
		{
			"single hint",
			"Plats: Vällinge",
			false,
		},
		{
			"case folded hints",
			"PLATS: Vällinge\nANMÄLAN senast fredag",
			true,
		},
		{
			"no hints",
			"Kursen ger grundläggande färdigheter.",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, segment.LooksLikeEvent(tt.block))
		})
	}
}
