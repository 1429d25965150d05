// Package microsoft implements translator.Translator on top of the
// Microsoft Translator v3 REST API.
//
// Requests:
//
//	POST https://{host}/translate?api-version=3.0&from=en&to=es   [{"Text":"Hello"}]
//	POST https://{host}/detect?api-version=3.0                    [{"Text":"Hola"}]
//	GET  https://{host}/languages?api-version=3.0&scope=translation
//
// Every request carries the Ocp-Apim-Subscription-Key and
// Ocp-Apim-Subscription-Region headers.
package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/minios-linux/xlfkit/translator"
)

const (
	// ProviderName is returned by Client.Provider.
	ProviderName = "Microsoft"
	// APIVersion is the Translator API version spoken by the client.
	APIVersion = "3.0"

	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// ErrMissingKey is returned by New without a subscription key.
var ErrMissingKey = errors.New("microsoft: subscription key is required")

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config configures a Client.
type Config struct {
	// SubscriptionKey is the secret key of the Translator resource.
	SubscriptionKey string
	// Region is the resource region, RegionGlobal when empty.
	Region string
	// Host is an API host name or a key of Hosts ("europe").
	// HostGlobal when empty.
	Host string
	// BaseURL overrides scheme and host entirely (e.g. for tests).
	BaseURL string

	Proxy      string
	Timeout    time.Duration
	MaxRetries int

	// LocaleMap maps local locale codes to Translator codes. When set it
	// replaces the built-in code transform.
	LocaleMap map[string]string
	// PlaceholderPatterns are regular expressions matching template
	// variables to shield from translation. Empty means %token%.
	PlaceholderPatterns []string
	// ExcludedWords are returned untranslated without calling the API.
	ExcludedWords []string
	// Category is the default translation category.
	Category string

	// Logger receives retry diagnostics at debug level. Optional.
	Logger *log.Logger
}

// ValidRegion reports whether r is a known Translator region.
func ValidRegion(r string) bool {
	return slices.Contains(Regions, r)
}

// ResolveHost maps a configured host (short name or host name) to an API
// host name.
func ResolveHost(h string) string {
	if h == "" {
		return HostGlobal
	}
	if full, ok := Hosts[strings.ToLower(h)]; ok {
		return full
	}
	return h
}

// LoadExcludedWords reads a JSON array of words and phrases.
func LoadExcludedWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading excluded words %s: %w", path, err)
	}
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("parsing excluded words %s: expected a JSON array of strings: %w", path, err)
	}
	return words, nil
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Client is a Microsoft Translator client.
type Client struct {
	key        string
	region     string
	baseURL    string
	category   string
	maxRetries int

	http     *http.Client
	norm     *translator.Normalizer
	ph       *translator.Placeholders
	excluded map[string]bool
	log      *log.Logger

	// backoff returns the wait before retry number attempt (0-based).
	backoff func(attempt int) time.Duration
}

var _ translator.Translator = (*Client)(nil)

// New returns a Client for cfg.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SubscriptionKey) == "" {
		return nil, ErrMissingKey
	}

	ph, err := translator.NewPlaceholders(cfg.PlaceholderPatterns...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		key:        cfg.SubscriptionKey,
		region:     cfg.Region,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		category:   cfg.Category,
		maxRetries: cfg.MaxRetries,
		norm:       translator.NewNormalizer(localeCodes(), cfg.LocaleMap, "-cn", "-hans", "-tw", "-hant"),
		ph:         ph,
		excluded:   make(map[string]bool, len(cfg.ExcludedWords)),
		log:        cfg.Logger,
		backoff: func(attempt int) time.Duration {
			return time.Duration(math.Pow(2, float64(attempt))) * time.Second
		},
	}
	if c.region == "" {
		c.region = RegionGlobal
	}
	if c.baseURL == "" {
		c.baseURL = "https://" + ResolveHost(cfg.Host)
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c.http = makeHTTPClient(cfg.Proxy, timeout)

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

// Translate implements translator.Translator.
func (c *Client) Translate(ctx context.Context, text, from, to string, opts translator.Options) (string, error) {
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

	q := url.Values{}
	q.Set("api-version", APIVersion)
	q.Set("from", f)
	q.Set("to", t)
	switch {
	case opts.TextType != "":
		q.Set("textType", opts.TextType)
	case translator.ContainsHTML(protected):
		q.Set("textType", "html")
	}
	category := opts.Category
	if category == "" {
		category = c.category
	}
	if category != "" {
		q.Set("category", category)
	}
	for k, v := range opts.Extra {
		q.Set(k, v)
	}

	var out []struct {
		Translations []struct {
			Text string `json:"text"`
			To   string `json:"to"`
		} `json:"translations"`
	}
	if err := c.do(ctx, http.MethodPost, "/translate", q, protected, &out); err != nil {
		return "", err
	}
	if len(out) == 0 || len(out[0].Translations) == 0 {
		return "", errors.New("microsoft: response contains no translation")
	}
	return restore(out[0].Translations[0].Text), nil
}

// DetectLanguage implements translator.Translator. The detected code is
// mapped back to a local code when a locale map is configured.
func (c *Client) DetectLanguage(ctx context.Context, text string) (string, error) {
	return c.Detect(ctx, text, true)
}

// Detect returns the Translator code of the language of text. With
// normalize set and a locale map configured, the code is mapped back to the
// matching local code where one exists.
func (c *Client) Detect(ctx context.Context, text string, normalize bool) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", translator.ErrEmptyText
	}

	q := url.Values{}
	q.Set("api-version", APIVersion)

	var out []struct {
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	}
	if err := c.do(ctx, http.MethodPost, "/detect", q, text, &out); err != nil {
		return "", err
	}
	if len(out) == 0 || out[0].Language == "" {
		return "", errors.New("microsoft: response contains no language")
	}

	lang := out[0].Language
	if normalize {
		if local, ok := c.norm.Reverse(lang); ok {
			return local, nil
		}
	}
	return lang, nil
}

// Language describes one entry of the languages endpoint.
type Language struct {
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	Dir        string `json:"dir,omitempty"`
}

// Languages returns the languages supported per scope ("translation",
// "transliteration", "dictionary"). Only the requested scopes present in the
// response are returned; with no scopes, "translation" is requested.
func (c *Client) Languages(ctx context.Context, scopes ...string) (map[string]map[string]Language, error) {
	if len(scopes) == 0 {
		scopes = []string{"translation"}
	}

	q := url.Values{}
	q.Set("api-version", APIVersion)
	q.Set("scope", strings.Join(scopes, ","))

	var out map[string]map[string]Language
	if err := c.do(ctx, http.MethodGet, "/languages", q, "", &out); err != nil {
		return nil, err
	}

	result := make(map[string]map[string]Language, len(scopes))
	for _, s := range scopes {
		if langs, ok := out[s]; ok {
			result[s] = langs
		}
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

// APIError is a non-success response of the Translator API.
type APIError struct {
	StatusCode int
	// Code is the Translator error code (e.g. 400036), 0 when absent.
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("microsoft: API returned status %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("microsoft: API returned status %d: %s", e.StatusCode, e.Message)
}

func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	var resp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error.Message != "" {
		e.Code = resp.Error.Code
		e.Message = resp.Error.Message
		return e
	}
	e.Message = truncate(strings.TrimSpace(string(body)), 500)
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// do sends a request and decodes a 200 response into out. Network errors,
// 429 and 5xx responses are retried up to maxRetries times.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, text string, out any) error {
	endpoint := c.baseURL + path + "?" + q.Encode()

	var body []byte
	if method == http.MethodPost {
		var err error
		body, err = json.Marshal([]struct {
			Text string `json:"Text"`
		}{{Text: text}})
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
		req.Header.Set("Ocp-Apim-Subscription-Region", c.region)

		c.debug("Translator request", "method", method, "path", path, "attempt", attempt+1)

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt < c.maxRetries && ctx.Err() == nil {
				if err := sleep(ctx, c.backoff(attempt)); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("microsoft: request failed: %w", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("microsoft: reading response: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if attempt < c.maxRetries {
				wait := c.backoff(attempt)
				if resp.StatusCode == http.StatusTooManyRequests {
					if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
						wait = d
					}
				}
				c.debug("Translator retry", "status", resp.StatusCode, "wait", wait)
				if err := sleep(ctx, wait); err != nil {
					return err
				}
				continue
			}
			return parseAPIError(resp.StatusCode, respBody)
		}

		if resp.StatusCode != http.StatusOK {
			return parseAPIError(resp.StatusCode, respBody)
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("microsoft: decoding response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("microsoft: exhausted all %d retries", c.maxRetries)
}

func (c *Client) debug(msg string, keyvals ...any) {
	if c.log != nil {
		c.log.Debug(msg, keyvals...)
	}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) (time.Duration, bool) {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
