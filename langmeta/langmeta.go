// Package langmeta resolves display metadata (names and emoji flags) for
// catalog locale codes shown in the CLI.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Code is the BCP 47 form of the locale ("pt-BR").
	Code string
	// Name is the English name ("Brazilian Portuguese").
	Name string
	// Native is the name in the language itself ("português").
	Native string
	// Flag is the emoji flag of the locale's region, "" when unknown.
	Flag string
}

func canonicalize(lang string) string {
	return strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
}

// Resolve returns best-effort metadata for a catalog locale such as pt_BR
// or zh-Hant. Unparseable codes come back with Name set to the input.
func Resolve(lang string) Meta {
	tag, err := language.Parse(canonicalize(lang))
	if err != nil || tag == language.Und {
		return Meta{Code: lang, Name: lang}
	}

	m := Meta{Code: tag.String()}
	if name := display.English.Tags().Name(tag); name != "" {
		m.Name = name
	} else {
		m.Name = lang
	}
	m.Native = display.Self.Name(tag)

	if region, conf := tag.Region(); conf != language.No {
		m.Flag = FlagFromRegion(region.String())
	}
	return m
}

// FlagFromRegion converts a two-letter region code into its emoji flag.
func FlagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(region) {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + c - 'A')
	}
	return b.String()
}

// Label formats a locale for tables: flag, code and native name.
func Label(lang string) string {
	m := Resolve(lang)
	parts := make([]string, 0, 3)
	if m.Flag != "" {
		parts = append(parts, m.Flag)
	}
	parts = append(parts, lang)
	if m.Native != "" {
		parts = append(parts, "("+m.Native+")")
	}
	return strings.Join(parts, " ")
}
