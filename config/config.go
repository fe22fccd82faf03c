// Package config - Run configuration for the detection harness.
package config

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// DefaultNumSelect is the number of (query, category) pairs selected per
// image when the config does not say otherwise.
const DefaultNumSelect = 300

// ModelConfig locates the ONNX checkpoint and names its tensors.
type ModelConfig struct {
	// Path to the ONNX checkpoint. The command line checkpoint flag
	// overrides it.
	Path string `json:"path" yaml:"path" validate:"required"`
	// Inputs names the model input tensors in order: pixel values, token
	// ids, attention mask, token type ids.
	Inputs []string `json:"inputs" yaml:"inputs" validate:"required,len=4,dive,required"`
	// Outputs names the model output tensors in order: logits, boxes.
	Outputs []string `json:"outputs" yaml:"outputs" validate:"required,len=2,dive,required"`
	// TextWidth is the token vocabulary width of the detection logits.
	TextWidth int `json:"text_width" yaml:"text_width" validate:"required,gt=0"`
}

// TokenizerConfig locates the caption tokenizer. It must be the tokenizer
// the model was exported with.
type TokenizerConfig struct {
	Path string `json:"path" yaml:"path" validate:"required"`
}

// NMSOptions control the optional suppression pass over selected boxes.
type NMSOptions struct {
	Enabled      bool    `json:"enabled" yaml:"enabled"`
	Greedy       bool    `json:"greedy" yaml:"greedy"`
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold" validate:"gte=0,lte=1"`
	ClassAware   bool    `json:"class_aware" yaml:"class_aware"`
}

// Config is the full configuration for one detection run.
type Config struct {
	Model     ModelConfig     `json:"model" yaml:"model"`
	Tokenizer TokenizerConfig `json:"tokenizer" yaml:"tokenizer"`
	// Categories is the ordered list of phrases to ground; order defines
	// the label indices.
	Categories []string `json:"categories" yaml:"categories" validate:"required,min=1,dive,required"`
	// NumSelect is the top-K selection count.
	NumSelect int `json:"num_select" yaml:"num_select" validate:"gt=0"`
	// NMS configures the optional suppression pass.
	NMS NMSOptions `json:"nms" yaml:"nms"`
}

// Load reads and validates a JSON configuration file. Any failure here is a
// startup error and must abort the run before inference.
//
// Arguments:
//   - path: Path to the configuration file.
//
// Returns:
//   - *Config: The validated configuration.
//   - error: An error if reading, parsing or validation fails.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}

	cfg := &Config{NumSelect: DefaultNumSelect}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	return cfg, nil
}
