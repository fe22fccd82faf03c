// Package tokenize - Tokenizer boundary for caption grounding.
package tokenize

// Token is one sub-word unit with its byte offsets into the source text.
// Special tokens ([CLS], [SEP], padding) carry an empty offset range.
type Token struct {
	// ID is the vocabulary id fed to the model's text input.
	ID int64
	// Start and End delimit the half-open byte range [Start, End) the token
	// covers in the source text.
	Start int
	End   int
}

// Empty reports whether the token covers no source text.
func (t Token) Empty() bool {
	return t.Start == t.End
}

// Tokenizer converts caption text into tokens aligned to byte offsets. The
// alignment is what lets category phrases be mapped onto token positions; a
// tokenizer without offsets cannot serve caption grounding.
type Tokenizer interface {
	Tokenize(text string) ([]Token, error)
}
