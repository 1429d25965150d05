// Package scan walks a directory of XLIFF catalogs and machine translates
// the untranslated units of every admitted file.
//
// Files are visited one at a time in lexical order. For each file the
// catalogue and locale are taken from the name (see package catalog),
// checked against the job's allow and deny lists, and the document is
// merged through package merge. Documents with at least one translated unit
// are written back in place unless the job is a dry run.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/minios-linux/xlfkit/catalog"
	"github.com/minios-linux/xlfkit/merge"
	"github.com/minios-linux/xlfkit/translator"
	"github.com/minios-linux/xlfkit/xliff"
)

// DefaultSourceLocale is the locale catalogs are translated from.
const DefaultSourceLocale = "en_GB"

// DefaultExcludeLocales are never translated into.
var DefaultExcludeLocales = []string{"en_GB", "en_US"}

// ErrUnsupportedSourceLocale is returned by Run when the translator cannot
// resolve the job's source locale. No file is touched in that case.
var ErrUnsupportedSourceLocale = errors.New("source locale is not supported by the translator")

// ---------------------------------------------------------------------------
// Job
// ---------------------------------------------------------------------------

// FilenamePolicy decides what happens to files whose name carries the
// catalog extension but does not split into catalogue, locale and extension.
type FilenamePolicy string

const (
	// PolicyTolerant logs a warning, records the name and moves on.
	PolicyTolerant FilenamePolicy = "tolerant"
	// PolicyStrict aborts the run. It also aborts on a file whose locale
	// the translator cannot resolve; tolerant runs skip such locales.
	PolicyStrict FilenamePolicy = "strict"
)

// ParsePolicy parses a policy name. The empty string means tolerant.
func ParsePolicy(s string) (FilenamePolicy, error) {
	switch FilenamePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyTolerant:
		return PolicyTolerant, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown filename policy %q (want %s or %s)", s, PolicyStrict, PolicyTolerant)
}

// Job describes one run. Use NewJob for the defaults.
type Job struct {
	// Dir is the directory holding the catalog files.
	Dir string
	// SourceLocale is the locale units are translated from.
	SourceLocale string
	// Locales, when non-empty, admits only these target locales.
	Locales []string
	// ExcludeLocales are never translated into.
	ExcludeLocales []string
	// Catalogues, when non-empty, admits only these catalogues.
	Catalogues []string

	// NewOnly translates only targets with state="new".
	NewOnly bool
	// Commit writes translated documents back. When false the run is a
	// dry run: everything is computed but no file is modified.
	Commit bool
	// Memory skips units already carrying the machine translation marker.
	Memory bool
	// OutputTranslated logs every source/translation pair.
	OutputTranslated bool

	Policy FilenamePolicy
	// MaxFailures is the per-file failure ceiling.
	MaxFailures int
	// Extension is the catalog file extension (".xlf").
	Extension string

	// Translate is passed to every translate call.
	Translate translator.Options
}

// NewJob returns a Job for dir with the default settings.
func NewJob(dir string) Job {
	return Job{
		Dir:            dir,
		SourceLocale:   DefaultSourceLocale,
		ExcludeLocales: slices.Clone(DefaultExcludeLocales),
		Commit:         true,
		Policy:         PolicyTolerant,
		MaxFailures:    merge.DefaultMaxFailures,
		Extension:      catalog.DefaultExtension,
	}
}

// ---------------------------------------------------------------------------
// Summary
// ---------------------------------------------------------------------------

// Failure is a file that could not be read or written.
type Failure struct {
	File string
	Err  error
}

func (f Failure) Error() string { return f.File + ": " + f.Err.Error() }

// Summary holds the statistics of a run. Name lists are deduplicated and
// kept in first-seen order.
type Summary struct {
	StringsRequested  int
	StringsTranslated int

	LocalesTranslated    []string
	LocalesSkipped       []string
	CataloguesTranslated []string
	CataloguesSkipped    []string

	// FilesWritten counts documents written back.
	FilesWritten int
	// Parsed lists the files that had translations, written or not.
	Parsed []string
	// Abandoned lists the files stopped by the failure ceiling.
	Abandoned []string
	// MalformedSkipped lists names rejected under the tolerant policy.
	MalformedSkipped []string
	// Failures lists read, parse and write errors.
	Failures []Failure
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

// ---------------------------------------------------------------------------
// Scanner
// ---------------------------------------------------------------------------

// Options configures a Scanner.
type Options struct {
	// Logger receives progress and diagnostics; log.Default() when nil.
	Logger *log.Logger
	// Now stamps translated units; time.Now when nil.
	Now func() time.Time
	// OnProgress, if set, is called after each directory entry.
	OnProgress func(done, total int, file string)
}

// Scanner runs a Job against a Translator.
type Scanner struct {
	tr         translator.Translator
	job        Job
	log        *log.Logger
	now        func() time.Time
	onProgress func(done, total int, file string)
}

// New returns a Scanner. Zero job fields fall back to the NewJob defaults,
// except the lists and flags, which are taken as given.
func New(tr translator.Translator, job Job, opts Options) *Scanner {
	if job.SourceLocale == "" {
		job.SourceLocale = DefaultSourceLocale
	}
	if job.Policy == "" {
		job.Policy = PolicyTolerant
	}
	if job.MaxFailures <= 0 {
		job.MaxFailures = merge.DefaultMaxFailures
	}
	job.Extension = catalog.NormalizeExtension(job.Extension)

	s := &Scanner{
		tr:         tr,
		job:        job,
		log:        opts.Logger,
		now:        opts.Now,
		onProgress: opts.OnProgress,
	}
	if s.log == nil {
		s.log = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Job returns the effective job.
func (s *Scanner) Job() Job { return s.job }

// Run processes every catalog file in the job directory.
//
// The summary is always returned, also alongside an error. Run stops with
// an error on an unsupported source locale, an unreadable directory, a
// malformed file name or unsupported target locale under the strict
// policy, or cancellation of ctx.
// A cancelled run finishes the file in progress (writing it if it has
// translations) and returns ctx.Err().
func (s *Scanner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	if s.tr.NormalizeLocale(s.job.SourceLocale) == "" {
		return sum, fmt.Errorf("%w: %s (%s)", ErrUnsupportedSourceLocale, s.job.SourceLocale, s.tr.Provider())
	}

	entries, err := os.ReadDir(s.job.Dir)
	if err != nil {
		return sum, fmt.Errorf("reading directory %s: %w", s.job.Dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, e.Name())
	}

	s.log.Debug("Scanning catalog directory", "dir", s.job.Dir, "files", len(files),
		"provider", s.tr.Provider(), "commit", s.job.Commit)

	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		err := s.processFile(ctx, name, &sum)
		if s.onProgress != nil {
			s.onProgress(i+1, len(files), name)
		}
		if err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// processFile handles one directory entry. A returned error aborts the run.
func (s *Scanner) processFile(ctx context.Context, name string, sum *Summary) error {
	job := s.job

	n, err := catalog.ParseName(name, job.Extension)
	switch {
	case errors.Is(err, catalog.ErrNotCatalog):
		s.log.Warn("Skipping file without catalog extension", "file", name, "extension", job.Extension)
		return nil
	case errors.Is(err, catalog.ErrMalformedName):
		if job.Policy == PolicyStrict {
			return err
		}
		s.log.Warn("Skipping malformed catalog file name", "file", name)
		sum.MalformedSkipped = append(sum.MalformedSkipped, name)
		return nil
	case err != nil:
		return err
	}

	if len(job.Catalogues) > 0 && !slices.Contains(job.Catalogues, n.Catalogue) {
		s.log.Debug("Skipping catalogue", "file", name, "catalogue", n.Catalogue)
		sum.CataloguesSkipped = appendUnique(sum.CataloguesSkipped, n.Catalogue)
		return nil
	}
	if !s.admitLocale(n.Locale) {
		s.log.Debug("Skipping locale", "file", name, "locale", n.Locale)
		sum.LocalesSkipped = appendUnique(sum.LocalesSkipped, n.Locale)
		return nil
	}
	if s.tr.NormalizeLocale(n.Locale) == "" {
		if job.Policy == PolicyStrict {
			return fmt.Errorf("%s: %w", name, &translator.LocaleError{Role: "to", Code: n.Locale})
		}
		s.log.Warn("Skipping locale unsupported by the translator", "file", name, "locale", n.Locale)
		sum.LocalesSkipped = appendUnique(sum.LocalesSkipped, n.Locale)
		return nil
	}

	path := filepath.Join(job.Dir, name)
	doc, err := xliff.ParseFile(path)
	if err != nil {
		s.log.Error("Cannot load catalog", "file", name, "err", err)
		sum.Failures = append(sum.Failures, Failure{File: name, Err: err})
		return nil
	}

	s.log.Info("Translating", "file", name, "catalogue", n.Catalogue, "locale", n.Locale)

	res, mergeErr := merge.Document(ctx, doc, s.tr, merge.Options{
		Filter:       merge.Filter{NewOnly: job.NewOnly, Memory: job.Memory},
		SourceLocale: job.SourceLocale,
		TargetLocale: n.Locale,
		MaxFailures:  job.MaxFailures,
		Translate:    job.Translate,
		Now:          s.now,
		OnFailure: func(id string, err error) {
			s.log.Warn("Translation failed", "file", name, "unit", id, "err", err)
		},
	})

	sum.StringsRequested += res.Requested
	sum.StringsTranslated += res.Translated
	if res.Abandoned {
		s.log.Warn("Too many failed translations, skipping rest of file",
			"file", name, "failures", res.Failures)
		sum.Abandoned = append(sum.Abandoned, name)
	}

	if res.Translated > 0 {
		s.finishFile(doc, path, n, res, sum)
	} else {
		s.log.Info("No strings translated", "file", name)
	}
	return mergeErr
}

func (s *Scanner) finishFile(doc *xliff.Document, path string, n catalog.Name, res merge.Result, sum *Summary) {
	if s.job.Commit {
		if err := doc.WriteFile(path); err != nil {
			s.log.Error("Cannot write catalog", "file", n.File, "err", err)
			sum.Failures = append(sum.Failures, Failure{File: n.File, Err: err})
			return
		}
		sum.FilesWritten++
	}

	sum.CataloguesTranslated = appendUnique(sum.CataloguesTranslated, n.Catalogue)
	sum.LocalesTranslated = appendUnique(sum.LocalesTranslated, n.Locale)
	sum.Parsed = append(sum.Parsed, n.File)

	if s.job.OutputTranslated {
		for i, p := range res.Pairs {
			s.log.Infof("[#%d] Source: %s", i+1, p.Source)
			s.log.Infof("[#%d] Translated: %s", i+1, p.Translated)
		}
	}
	s.log.With("file", n.File, "written", s.job.Commit).Infof("Strings translated: %d", res.Translated)
}

func (s *Scanner) admitLocale(locale string) bool {
	job := s.job
	if len(job.Locales) > 0 && !slices.Contains(job.Locales, locale) {
		return false
	}
	if slices.Contains(job.ExcludeLocales, locale) {
		return false
	}
	return locale != job.SourceLocale
}
