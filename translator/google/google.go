// Package google implements translator.Translator with the free Google
// Translate web endpoint through github.com/bregydoc/gtranslate.
//
// No API key is needed. The endpoint offers no language detection, so
// DetectLanguage returns translator.ErrNotSupported.
package google

import (
	"context"
	"errors"
	"strings"

	"github.com/bregydoc/gtranslate"

	"github.com/minios-linux/xlfkit/translator"
)

// ProviderName is returned by Client.Provider.
const ProviderName = "Google"

// Locales lists the language codes accepted by Google Translate.
var Locales = []string{
	"af", "am", "ar", "az", "be", "bg", "bn", "bs", "ca", "ceb", "co", "cs",
	"cy", "da", "de", "el", "en", "eo", "es", "et", "eu", "fa", "fi", "fr",
	"fy", "ga", "gd", "gl", "gu", "ha", "haw", "he", "hi", "hmn", "hr", "ht",
	"hu", "hy", "id", "ig", "is", "it", "ja", "jw", "ka", "kk", "km", "kn",
	"ko", "ku", "ky", "la", "lb", "lo", "lt", "lv", "mg", "mi", "mk", "ml",
	"mn", "mr", "ms", "mt", "my", "ne", "nl", "no", "ny", "pa", "pl", "ps",
	"pt", "ro", "ru", "sd", "si", "sk", "sl", "sm", "sn", "so", "sq", "sr",
	"st", "su", "sv", "sw", "ta", "te", "tg", "th", "tl", "tr", "uk", "ur",
	"uz", "vi", "xh", "yi", "yo", "zh-CN", "zh-TW", "zu",
}

// Config configures a Client.
type Config struct {
	LocaleMap           map[string]string
	PlaceholderPatterns []string
	ExcludedWords       []string
}

// Client translates through gtranslate.
type Client struct {
	norm     *translator.Normalizer
	ph       *translator.Placeholders
	excluded map[string]bool

	translate func(text string, p gtranslate.TranslationParams) (string, error)
}

var _ translator.Translator = (*Client)(nil)

// New returns a Client for cfg.
func New(cfg Config) (*Client, error) {
	ph, err := translator.NewPlaceholders(cfg.PlaceholderPatterns...)
	if err != nil {
		return nil, err
	}
	c := &Client{
		norm:      translator.NewNormalizer(Locales, cfg.LocaleMap),
		ph:        ph,
		excluded:  make(map[string]bool, len(cfg.ExcludedWords)),
		translate: gtranslate.TranslateWithParams,
	}
	for _, w := range cfg.ExcludedWords {
		c.excluded[w] = true
	}
	return c, nil
}

// Provider implements translator.Translator.
func (c *Client) Provider() string { return ProviderName }

// NormalizeLocale implements translator.Translator.
func (c *Client) NormalizeLocale(code string) string { return c.norm.Normalize(code) }

// ContainsHTML implements translator.Translator.
func (c *Client) ContainsHTML(text string) bool { return translator.ContainsHTML(text) }

// DetectLanguage is not offered by the endpoint.
func (c *Client) DetectLanguage(context.Context, string) (string, error) {
	return "", translator.ErrNotSupported
}

// Translate implements translator.Translator. Options are ignored.
func (c *Client) Translate(ctx context.Context, text, from, to string, _ translator.Options) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", translator.ErrEmptyText
	}
	if c.excluded[text] {
		return text, nil
	}

	f, t, err := translator.ResolvePair(c.norm, text, from, to)
	if err != nil {
		return "", err
	}
	protected, restore := c.ph.Protect(text)

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		s, err := c.translate(protected, gtranslate.TranslationParams{From: f, To: t})
		done <- result{s, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if r.text == "" {
			return "", errors.New("google: empty translation")
		}
		return restore(r.text), nil
	}
}
