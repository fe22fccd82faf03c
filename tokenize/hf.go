// Package tokenize - HuggingFace tokenizer implementation.
package tokenize

import (
	"github.com/daulet/tokenizers"
	"github.com/pkg/errors"
)

// HFTokenizer wraps a HuggingFace tokenizer.json file. It must be the same
// tokenizer the detection model was exported with, otherwise the token
// positions in the classification logits will not line up with the caption.
type HFTokenizer struct {
	tk *tokenizers.Tokenizer
}

// NewHFTokenizer loads a tokenizer from a tokenizer.json file.
//
// Arguments:
//   - path: Path to the tokenizer.json file.
//
// Returns:
//   - *HFTokenizer: The loaded tokenizer.
//   - error: An error if loading fails.
func NewHFTokenizer(path string) (*HFTokenizer, error) {
	tk, err := tokenizers.FromFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading tokenizer from %s", path)
	}
	return &HFTokenizer{tk: tk}, nil
}

// Tokenize encodes text with special tokens and offset alignment.
func (t *HFTokenizer) Tokenize(text string) ([]Token, error) {
	enc := t.tk.EncodeWithOptions(text, true, tokenizers.WithReturnOffsets())
	if len(enc.IDs) == 0 {
		return nil, errors.Errorf("tokenizer produced no tokens for %q", text)
	}
	if len(enc.Offsets) != len(enc.IDs) {
		return nil, errors.Errorf(
			"tokenizer returned %d offsets for %d tokens, offset alignment is required",
			len(enc.Offsets), len(enc.IDs),
		)
	}

	toks := make([]Token, len(enc.IDs))
	for i, id := range enc.IDs {
		toks[i] = Token{
			ID:    int64(id),
			Start: int(enc.Offsets[i][0]),
			End:   int(enc.Offsets[i][1]),
		}
	}
	return toks, nil
}

// Close releases the underlying native tokenizer.
func (t *HFTokenizer) Close() {
	if t.tk != nil {
		t.tk.Close()
		t.tk = nil
	}
}
