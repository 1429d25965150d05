package translator

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Normalizer resolves local locale codes (en_GB, zh_CN, pt_BR) to a
// provider's locale vocabulary.
//
// Resolution order:
//  1. a code already present in the provider table is returned as-is;
//  2. when a locale map is configured it is authoritative: the mapped value
//     or "" for unmapped codes;
//  3. otherwise the code is lowercased, '_' becomes '-', provider aliases
//     are applied and the result is matched case-insensitively against the
//     table;
//  4. failing that, the base language of the parsed tag is tried
//     (es_419 -> es).
type Normalizer struct {
	exact     map[string]bool
	folded    map[string]string
	localeMap map[string]string
	aliases   *strings.Replacer
}

// NewNormalizer builds a Normalizer for the given provider table.
// aliases are old/new suffix pairs applied after lowercasing, for example
// "-cn", "-hans".
func NewNormalizer(table []string, localeMap map[string]string, aliases ...string) *Normalizer {
	n := &Normalizer{
		exact:  make(map[string]bool, len(table)),
		folded: make(map[string]string, len(table)),
	}
	for _, code := range table {
		n.exact[code] = true
		n.folded[strings.ToLower(code)] = code
	}
	if len(localeMap) > 0 {
		n.localeMap = make(map[string]string, len(localeMap))
		for k, v := range localeMap {
			n.localeMap[k] = v
		}
	}
	if len(aliases) >= 2 {
		n.aliases = strings.NewReplacer(aliases[:len(aliases)/2*2]...)
	}
	return n
}

// Normalize returns the provider code for code, or "" when unsupported.
func (n *Normalizer) Normalize(code string) string {
	if code == "" {
		return ""
	}
	if n.exact[code] {
		return code
	}
	if n.localeMap != nil {
		return n.localeMap[code]
	}

	key := strings.ReplaceAll(strings.ToLower(code), "_", "-")
	if n.aliases != nil {
		key = n.aliases.Replace(key)
	}
	if c, ok := n.folded[key]; ok {
		return c
	}

	tag, err := language.Parse(key)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return n.folded[strings.ToLower(base.String())]
}

// Reverse maps a provider code back to a local code through the flipped
// locale map. When several local codes share a provider code the lexically
// smallest one wins. Without a map, or for an unmapped code, ok is false.
func (n *Normalizer) Reverse(code string) (local string, ok bool) {
	if n.localeMap == nil {
		return "", false
	}
	var matches []string
	for k, v := range n.localeMap {
		if v == code {
			matches = append(matches, k)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}

// Supports reports whether code is in the provider table verbatim.
func (n *Normalizer) Supports(code string) bool {
	return n.exact[code]
}

// Codes returns the provider table, sorted.
func (n *Normalizer) Codes() []string {
	out := make([]string, 0, len(n.exact))
	for c := range n.exact {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
