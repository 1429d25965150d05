// Package translator defines the machine-translation port used by the
// catalog scanner, together with the helpers every provider shares:
// locale normalization, placeholder protection and markup detection.
//
// Providers live in sub-packages (microsoft, google) and satisfy the
// Translator interface without the scanner knowing which one is in use.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Port
// ---------------------------------------------------------------------------

// Translator is the capability set the scanner needs from a provider.
type Translator interface {
	// Provider returns the display name of the provider (e.g. "Microsoft").
	Provider() string
	// NormalizeLocale resolves a local locale code (en_GB, zh_CN) to the
	// provider's vocabulary. An empty result means the locale is unsupported.
	NormalizeLocale(code string) string
	// Translate translates text from one local locale to another. An empty
	// result or a non-nil error means the text could not be translated.
	Translate(ctx context.Context, text, from, to string, opts Options) (string, error)
	// DetectLanguage returns the locale code of text.
	DetectLanguage(ctx context.Context, text string) (string, error)
	// ContainsHTML reports whether text carries markup.
	ContainsHTML(text string) bool
}

// Options carries per-request provider parameters.
type Options struct {
	// Category selects a provider-specific domain model ("general", "tech").
	Category string
	// TextType forces the request text type ("plain" or "html").
	// Empty means auto-detect from the text.
	TextType string
	// Extra holds additional provider query parameters.
	Extra map[string]string
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrEmptyText is returned when blank text is given for translation.
	ErrEmptyText = errors.New("no text was given for translation")
	// ErrUnsupportedLocale is returned when a locale cannot be resolved to a
	// provider code.
	ErrUnsupportedLocale = errors.New("unsupported locale")
	// ErrSameLocale is returned when source and target resolve to the same code.
	ErrSameLocale = errors.New("locales for from and to are the same")
	// ErrNotSupported is returned by providers lacking an optional capability.
	ErrNotSupported = errors.New("operation not supported by provider")
)

// LocaleError describes a locale that could not be resolved.
type LocaleError struct {
	// Role is "from" or "to".
	Role string
	// Code is the local locale code as given.
	Code string
}

func (e *LocaleError) Error() string {
	return fmt.Sprintf("no provider locale code could be resolved for the %s locale %q", e.Role, e.Code)
}

func (e *LocaleError) Unwrap() error { return ErrUnsupportedLocale }

// ResolvePair normalizes both locales of a request and validates them.
// It is the shared preamble of every provider's Translate.
func ResolvePair(n *Normalizer, text, from, to string) (string, string, error) {
	if strings.TrimSpace(text) == "" {
		return "", "", ErrEmptyText
	}

	f := n.Normalize(from)
	if f == "" {
		return "", "", &LocaleError{Role: "from", Code: from}
	}
	t := n.Normalize(to)
	if t == "" {
		return "", "", &LocaleError{Role: "to", Code: to}
	}
	if f == t {
		return "", "", fmt.Errorf("%w: %s", ErrSameLocale, f)
	}
	return f, t, nil
}

// ---------------------------------------------------------------------------
// Markup detection
// ---------------------------------------------------------------------------

// ContainsHTML reports whether s differs from its tag-stripped form.
func ContainsHTML(s string) bool {
	return StripTags(s) != s
}

// StripTags removes markup from s. A '<' starts a tag only when it is
// followed by a non-space character; quoted attribute values may contain '>'.
func StripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	inTag := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inTag:
			switch {
			case quote != 0:
				if c == quote {
					quote = 0
				}
			case c == '"' || c == '\'':
				quote = c
			case c == '>':
				inTag = false
			}
		case c == '<' && i+1 < len(s) && !isSpace(s[i+1]):
			inTag = true
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
