// .xlfkit.yaml configuration file support.
//
// When a .xlfkit.yaml file exists in the project root, its settings are the
// defaults for every command; command-line flags override them.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/xlfkit/catalog"
	"github.com/minios-linux/xlfkit/scan"
	"github.com/minios-linux/xlfkit/translator/microsoft"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .xlfkit.yaml structure.
type File struct {
	// Dir is the catalog directory relative to the config file.
	Dir string `yaml:"dir,omitempty"`
	// Extension is the catalog file extension (default ".xlf").
	Extension string `yaml:"extension,omitempty"`
	// SourceLocale is the locale catalogs are translated from (default "en_GB").
	SourceLocale string `yaml:"source_locale,omitempty"`
	// Locales, when set, restricts translation to these locales.
	Locales []string `yaml:"locales,omitempty"`
	// ExcludeLocales are never translated into. Omitted means en_GB and
	// en_US; an explicit empty list excludes nothing.
	ExcludeLocales []string `yaml:"exclude_locales,omitempty"`
	// Catalogues, when set, restricts translation to these catalogues.
	Catalogues []string `yaml:"catalogues,omitempty"`

	NewOnly          bool `yaml:"new_only,omitempty"`
	DryRun           bool `yaml:"dry_run,omitempty"`
	Memory           bool `yaml:"memory,omitempty"`
	OutputTranslated bool `yaml:"output_translated,omitempty"`

	// FilenamePolicy is "tolerant" (default) or "strict".
	FilenamePolicy string `yaml:"filename_policy,omitempty"`
	// MaxFailures is the per-file failure ceiling (default 10).
	MaxFailures int `yaml:"max_failures,omitempty"`

	Provider Provider `yaml:"provider,omitempty"`

	// path is the file the settings were read from.
	path string
}

// Provider holds the translation provider settings.
type Provider struct {
	// Name is "microsoft" (default) or "google".
	Name string `yaml:"name,omitempty"`
	// Region is the Microsoft Translator resource region.
	Region string `yaml:"region,omitempty"`
	// Host is an API host or one of global, us, europe, asia.
	Host string `yaml:"host,omitempty"`
	// Category is the Microsoft translation category (general, tech).
	Category string        `yaml:"category,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	Retries  int           `yaml:"retries,omitempty"`
	Proxy    string        `yaml:"proxy,omitempty"`

	// LocaleMap maps local locale codes to provider codes.
	LocaleMap map[string]string `yaml:"locale_map,omitempty"`
	// PlaceholderPatterns are regular expressions of template variables.
	PlaceholderPatterns []string `yaml:"placeholder_patterns,omitempty"`
	// ExcludedWords are never translated.
	ExcludedWords []string `yaml:"excluded_words,omitempty"`
	// ExcludedWordsFile is a JSON array of excluded words, relative to the
	// config file.
	ExcludedWordsFile string `yaml:"excluded_words_file,omitempty"`
}

// Provider names.
const (
	ProviderMicrosoft = "microsoft"
	ProviderGoogle    = "google"
)

// Providers lists the supported provider names.
var Providers = []string{ProviderMicrosoft, ProviderGoogle}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = ".xlfkit.yaml"

// Load loads and validates .xlfkit.yaml from the given directory.
// Returns nil if no .xlfkit.yaml exists.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.path = path
	return f, nil
}

// Default returns the settings used when no config file exists.
func Default() *File {
	f, err := Parse(nil)
	if err != nil {
		panic(err)
	}
	return f
}

// Parse parses and validates .xlfkit.yaml content, applying defaults.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	// Defaults
	if f.Dir == "" {
		f.Dir = "."
	}
	f.Extension = catalog.NormalizeExtension(f.Extension)
	if f.SourceLocale == "" {
		f.SourceLocale = scan.DefaultSourceLocale
	}
	if f.ExcludeLocales == nil {
		f.ExcludeLocales = slices.Clone(scan.DefaultExcludeLocales)
	}
	if f.Provider.Name == "" {
		f.Provider.Name = ProviderMicrosoft
	}
	f.Provider.Name = strings.ToLower(f.Provider.Name)

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the settings for unknown values.
func (f *File) Validate() error {
	if _, err := scan.ParsePolicy(f.FilenamePolicy); err != nil {
		return err
	}
	if f.MaxFailures < 0 {
		return fmt.Errorf("max_failures must not be negative, got %d", f.MaxFailures)
	}
	if !slices.Contains(Providers, f.Provider.Name) {
		return fmt.Errorf("unknown provider %q (valid: %s)", f.Provider.Name, strings.Join(Providers, ", "))
	}
	if r := f.Provider.Region; r != "" && !microsoft.ValidRegion(r) {
		return fmt.Errorf("unknown region %q", r)
	}
	if c := f.Provider.Category; c != "" && !slices.Contains(microsoft.Categories, c) {
		return fmt.Errorf("unknown category %q (valid: %s)", c, strings.Join(microsoft.Categories, ", "))
	}
	return nil
}

// Path returns the file the settings were loaded from, or "" for parsed
// content.
func (f *File) Path() string { return f.path }

// ---------------------------------------------------------------------------
// Resolving
// ---------------------------------------------------------------------------

// Job converts the settings into a scan.Job. Relative paths are resolved
// against projectRoot.
func (f *File) Job(projectRoot string) (scan.Job, error) {
	policy, err := scan.ParsePolicy(f.FilenamePolicy)
	if err != nil {
		return scan.Job{}, err
	}

	job := scan.NewJob(f.resolve(projectRoot, f.Dir))
	job.Extension = f.Extension
	job.SourceLocale = f.SourceLocale
	job.Locales = f.Locales
	job.ExcludeLocales = f.ExcludeLocales
	job.Catalogues = f.Catalogues
	job.NewOnly = f.NewOnly
	job.Commit = !f.DryRun
	job.Memory = f.Memory
	job.OutputTranslated = f.OutputTranslated
	job.Policy = policy
	if f.MaxFailures > 0 {
		job.MaxFailures = f.MaxFailures
	}
	job.Translate.Category = f.Provider.Category
	return job, nil
}

// ExcludedWords returns the inline excluded words followed by those of
// ExcludedWordsFile.
func (f *File) ExcludedWords(projectRoot string) ([]string, error) {
	words := slices.Clone(f.Provider.ExcludedWords)
	if f.Provider.ExcludedWordsFile == "" {
		return words, nil
	}
	fromFile, err := microsoft.LoadExcludedWords(f.resolve(projectRoot, f.Provider.ExcludedWordsFile))
	if err != nil {
		return nil, err
	}
	return append(words, fromFile...), nil
}

func (f *File) resolve(projectRoot, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectRoot, p)
}
