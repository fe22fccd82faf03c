package grounding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildCaptionJoinsWithSeparator verifies the caption format and that the
// recorded spans slice back to the exact phrases.
func TestBuildCaptionJoinsWithSeparator(t *testing.T) {
	caption, err := BuildCaption([]string{"cat", "dog"})
	require.NoError(t, err)

	assert.Equal(t, "cat . dog .", caption.Text)
	require.Len(t, caption.Spans, 2)
	assert.Equal(t, "cat", caption.Text[caption.Spans[0].Start:caption.Spans[0].End])
	assert.Equal(t, "dog", caption.Text[caption.Spans[1].Start:caption.Spans[1].End])
}

// TestBuildCaptionNormalizesPhrases verifies lowercasing and trimming before
// the join.
func TestBuildCaptionNormalizesPhrases(t *testing.T) {
	caption, err := BuildCaption([]string{"  Leaf Dill ", "Misofish"})
	require.NoError(t, err)

	assert.Equal(t, "leaf dill . misofish .", caption.Text)
	assert.Equal(t, "leaf dill", caption.Text[caption.Spans[0].Start:caption.Spans[0].End])
	assert.Equal(t, "misofish", caption.Text[caption.Spans[1].Start:caption.Spans[1].End])
}

// TestBuildCaptionSingleCategory verifies the trailing separator is present
// even for one phrase.
func TestBuildCaptionSingleCategory(t *testing.T) {
	caption, err := BuildCaption([]string{"bean"})
	require.NoError(t, err)
	assert.Equal(t, "bean .", caption.Text)
}

// TestBuildCaptionRejectsBadInput verifies configuration errors surface at
// caption build time.
func TestBuildCaptionRejectsBadInput(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
	}{
		{"nil list", nil},
		{"empty list", []string{}},
		{"blank phrase", []string{"cat", "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCaption(tt.categories)
			assert.Error(t, err)
		})
	}
}
