// Package catalog parses the file naming convention of XLIFF catalog
// directories.
//
// Each catalogue is stored once per locale:
//
//	translations/messages.en_GB.xlf  (source)
//	translations/messages.es.xlf
//	translations/validators.fr_FR.xlf
//
// The name has exactly three dot-separated parts: catalogue, locale and
// the extension without its leading dot.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultExtension is the catalog file extension used when none is
// configured.
const DefaultExtension = ".xlf"

var (
	// ErrMalformedName is returned for file names that carry the extension
	// but do not split into catalogue, locale and extension.
	ErrMalformedName = errors.New("malformed catalog file name")
	// ErrNotCatalog is returned for file names without the extension.
	ErrNotCatalog = errors.New("not a catalog file")
)

// Name is a parsed catalog file name.
type Name struct {
	Catalogue string
	Locale    string
	// File is the original base name.
	File string
}

func (n Name) String() string { return n.File }

// ParseName splits filename (a base name, not a path) using the extension
// ext (".xlf" when empty).
//
// A name that does not contain ext yields ErrNotCatalog. A name containing
// ext that is not exactly "<catalogue>.<locale><ext>" yields ErrMalformedName.
func ParseName(filename, ext string) (Name, error) {
	ext = NormalizeExtension(ext)

	if !strings.Contains(filename, ext) {
		return Name{}, fmt.Errorf("%s: %w", filename, ErrNotCatalog)
	}

	parts := strings.Split(filename, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || "."+parts[2] != ext {
		return Name{}, fmt.Errorf("%s: %w", filename, ErrMalformedName)
	}
	return Name{Catalogue: parts[0], Locale: parts[1], File: filename}, nil
}

// NormalizeExtension returns ext with a single leading dot, or
// DefaultExtension when ext is empty.
func NormalizeExtension(ext string) string {
	ext = strings.TrimLeft(strings.TrimSpace(ext), ".")
	if ext == "" {
		return DefaultExtension
	}
	return "." + ext
}

// FileName builds the file name of catalogue in locale.
func FileName(catalogue, locale, ext string) string {
	return catalogue + "." + locale + NormalizeExtension(ext)
}
