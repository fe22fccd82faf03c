package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile drops raw JSON into a temp file and returns its path.
func writeConfigFile(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	return path
}

const validConfig = `{
	"model": {
		"path": "weights/model.onnx",
		"inputs": ["pixel_values", "input_ids", "attention_mask", "token_type_ids"],
		"outputs": ["logits", "pred_boxes"],
		"text_width": 256
	},
	"tokenizer": {"path": "weights/tokenizer.json"},
	"categories": ["cat", "dog"],
	"nms": {"enabled": true, "iou_threshold": 0.5}
}`

// TestLoadValidConfig exercises a complete configuration file.
func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "weights/model.onnx", cfg.Model.Path)
	assert.Equal(t, 256, cfg.Model.TextWidth)
	assert.Equal(t, []string{"cat", "dog"}, cfg.Categories)
	assert.Equal(t, DefaultNumSelect, cfg.NumSelect, "num_select should default when omitted")
	assert.True(t, cfg.NMS.Enabled)
	assert.Equal(t, float32(0.5), cfg.NMS.IoUThreshold)
}

// TestLoadNumSelectOverride verifies an explicit num_select wins over the
// default.
func TestLoadNumSelectOverride(t *testing.T) {
	raw := `{
		"model": {
			"path": "m.onnx",
			"inputs": ["a", "b", "c", "d"],
			"outputs": ["x", "y"],
			"text_width": 256
		},
		"tokenizer": {"path": "tok.json"},
		"categories": ["cat"],
		"num_select": 100
	}`

	cfg, err := Load(writeConfigFile(t, raw))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.NumSelect)
}

// TestLoadRejectsInvalidConfig covers the validation failures a startup
// check must catch.
func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "missing model path",
			raw: `{
				"model": {"inputs": ["a","b","c","d"], "outputs": ["x","y"], "text_width": 256},
				"tokenizer": {"path": "tok.json"},
				"categories": ["cat"]
			}`,
		},
		{
			name: "wrong input tensor count",
			raw: `{
				"model": {"path": "m.onnx", "inputs": ["a","b"], "outputs": ["x","y"], "text_width": 256},
				"tokenizer": {"path": "tok.json"},
				"categories": ["cat"]
			}`,
		},
		{
			name: "no categories",
			raw: `{
				"model": {"path": "m.onnx", "inputs": ["a","b","c","d"], "outputs": ["x","y"], "text_width": 256},
				"tokenizer": {"path": "tok.json"},
				"categories": []
			}`,
		},
		{
			name: "iou threshold above one",
			raw: `{
				"model": {"path": "m.onnx", "inputs": ["a","b","c","d"], "outputs": ["x","y"], "text_width": 256},
				"tokenizer": {"path": "tok.json"},
				"categories": ["cat"],
				"nms": {"iou_threshold": 1.5}
			}`,
		},
		{
			name: "negative num_select",
			raw: `{
				"model": {"path": "m.onnx", "inputs": ["a","b","c","d"], "outputs": ["x","y"], "text_width": 256},
				"tokenizer": {"path": "tok.json"},
				"categories": ["cat"],
				"num_select": -1
			}`,
		},
		{
			name: "malformed json",
			raw:  `{"model": `,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfigFile(t, tc.raw))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

// TestLoadMissingFile verifies a readable error for a bad path.
func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
