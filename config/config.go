// Package config implements auto-detection of the catalog directory and
// loading of the .xlfkit.yaml settings file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/xlfkit/catalog"
)

// CandidateDirs are searched, in order, for catalog files when no directory
// is configured.
var CandidateDirs = []string{
	"translations",
	filepath.Join("app", "Resources", "translations"),
	filepath.Join("resources", "translations"),
	filepath.Join("src", "Resources", "translations"),
	"locale",
	".",
}

// Project describes a catalog directory.
type Project struct {
	// Dir is the absolute catalog directory.
	Dir string
	// Extension is the catalog file extension.
	Extension string
	// Catalogues found in Dir, sorted.
	Catalogues []string
	// Locales found in Dir, sorted.
	Locales []string
	// Files are the parsed catalog file names in directory order.
	Files []catalog.Name
	// Malformed lists names carrying the extension that do not parse.
	Malformed []string
}

// HasLocale reports whether any catalogue exists in locale.
func (p *Project) HasLocale(locale string) bool {
	i := sort.SearchStrings(p.Locales, locale)
	return i < len(p.Locales) && p.Locales[i] == locale
}

// Detect looks for the first candidate directory below rootDir holding
// catalog files with extension ext. It returns nil when none is found.
func Detect(rootDir, ext string) *Project {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}
	for _, candidate := range CandidateDirs {
		p, err := Inspect(filepath.Join(absRoot, candidate), ext)
		if err == nil && len(p.Files) > 0 {
			return p
		}
	}
	return nil
}

// Inspect lists the catalog files of dir.
func Inspect(dir, ext string) (*Project, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	p := &Project{Dir: dir, Extension: catalog.NormalizeExtension(ext)}
	catalogues := make(map[string]bool)
	locales := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		n, err := catalog.ParseName(entry.Name(), p.Extension)
		switch {
		case errors.Is(err, catalog.ErrMalformedName):
			p.Malformed = append(p.Malformed, entry.Name())
			continue
		case err != nil:
			continue
		}
		p.Files = append(p.Files, n)
		catalogues[n.Catalogue] = true
		locales[n.Locale] = true
	}
	p.Catalogues = sortedKeys(catalogues)
	p.Locales = sortedKeys(locales)
	return p, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
