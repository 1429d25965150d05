package translator

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// DefaultPlaceholderPattern matches %token% template variables.
const DefaultPlaceholderPattern = `%([^%\s]+)%`

// tokenPattern matches the positional tokens written by Protect.
var tokenPattern = regexp.MustCompile(`%(\d+)%`)

// Placeholders shields template variables from the remote service.
//
// Every distinct match is replaced, in first-seen order, by a positional
// token (%1%, %2%, ...) before the text leaves the process, and the original
// values are put back into the translated result afterwards.
type Placeholders struct {
	patterns []*regexp.Regexp
}

// NewPlaceholders compiles the given patterns. With no patterns the
// default %token% pattern is used.
func NewPlaceholders(patterns ...string) (*Placeholders, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPlaceholderPattern}
	}

	p := &Placeholders{}
	for _, expr := range patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling placeholder pattern %q: %w", expr, err)
		}
		p.patterns = append(p.patterns, re)
	}
	return p, nil
}

// Patterns returns the source of the compiled patterns.
func (p *Placeholders) Patterns() []string {
	out := make([]string, len(p.patterns))
	for i, re := range p.patterns {
		out[i] = re.String()
	}
	return out
}

type span struct{ start, end int }

// Find returns the placeholders in text in order of appearance.
func (p *Placeholders) Find(text string) []string {
	spans := p.spans(text)
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = text[s.start:s.end]
	}
	return out
}

// spans collects the non-overlapping matches of all patterns, ordered by
// position. When two patterns overlap the earlier (then longer) match wins.
func (p *Placeholders) spans(text string) []span {
	var all []span
	for _, re := range p.patterns {
		for _, m := range re.FindAllStringIndex(text, -1) {
			if m[1] > m[0] {
				all = append(all, span{m[0], m[1]})
			}
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end > all[j].end
	})

	var out []span
	last := -1
	for _, s := range all {
		if s.start < last {
			continue
		}
		out = append(out, s)
		last = s.end
	}
	return out
}

// Protect replaces placeholders in text with positional tokens. It returns
// the protected text and a function restoring the original values in a
// translated string. When text has no placeholders the restore function
// returns its input unchanged.
func (p *Placeholders) Protect(text string) (string, func(string) string) {
	spans := p.spans(text)
	if len(spans) == 0 {
		return text, func(s string) string { return s }
	}

	index := make(map[string]int)
	var values []string
	var out []byte
	prev := 0
	for _, s := range spans {
		v := text[s.start:s.end]
		n, ok := index[v]
		if !ok {
			values = append(values, v)
			n = len(values)
			index[v] = n
		}
		out = append(out, text[prev:s.start]...)
		out = append(out, '%')
		out = strconv.AppendInt(out, int64(n), 10)
		out = append(out, '%')
		prev = s.end
	}
	out = append(out, text[prev:]...)

	restore := func(translated string) string {
		return tokenPattern.ReplaceAllStringFunc(translated, func(tok string) string {
			n, err := strconv.Atoi(tok[1 : len(tok)-1])
			if err != nil || n < 1 || n > len(values) {
				return tok
			}
			return values[n-1]
		})
	}
	return string(out), restore
}
