package errors

import (
	"unicode"
	"unicode/utf8"
)

// ValidateDelimiter checks that s is usable as a CSV field delimiter and
// returns it as a rune.
//
// The rules match encoding/csv: exactly one character, not a quote, not a
// line break, not the Unicode replacement character.
func ValidateDelimiter(s string) (rune, error) {
	if s == "" {
		return ',', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, New(ErrCodeInvalidFormat, "delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	switch {
	case r == '"', r == '\r', r == '\n', r == utf8.RuneError:
		return 0, New(ErrCodeInvalidFormat, "invalid delimiter %q", s)
	}
	return r, nil
}

// ValidateDocumentName validates the name written into the YAML meta block.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 256 characters
//   - No control characters
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFormat, "document name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidFormat, "document name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFormat, "document name contains invalid control characters")
		}
	}
	return nil
}
