// Package merge implements the per-document translation merge: it picks
// the trans-units that still hold their source text, sends them through a
// translator and writes the results back into the document in place.
package merge

import (
	"context"
	"errors"
	"time"

	"github.com/minios-linux/xlfkit/translator"
	"github.com/minios-linux/xlfkit/xliff"
)

const (
	// DefaultMaxFailures is the per-document failure ceiling.
	DefaultMaxFailures = 10
	// StateNew is the target state selected by new-only mode.
	StateNew = "new"
)

// ErrEmptyTranslation is reported to OnFailure when the translator returned
// no text and no error.
var ErrEmptyTranslation = errors.New("translator returned an empty string")

// ---------------------------------------------------------------------------
// Candidate selection
// ---------------------------------------------------------------------------

// Filter selects the units to translate.
type Filter struct {
	// NewOnly restricts translation to targets with state="new".
	NewOnly bool
	// Memory skips units already carrying the machine translation marker.
	Memory bool
}

// Candidate reports whether u should be sent to the translator. A unit is a
// candidate when its source and target are non-empty and identical, plus the
// new-only and memory conditions when enabled.
func (f Filter) Candidate(u *xliff.Unit) bool {
	if f.NewOnly {
		if st, ok := u.TargetState(); !ok || st != StateNew {
			return false
		}
	}
	if f.Memory && u.IsMachineTranslated() {
		return false
	}

	src, tgt := u.Source(), u.Target()
	return src != "" && tgt != "" && src == tgt
}

// ---------------------------------------------------------------------------
// Merge
// ---------------------------------------------------------------------------

// Pair is a translated unit.
type Pair struct {
	ID         string
	Source     string
	Translated string
}

// Result holds the outcome of merging one document.
type Result struct {
	// Requested counts translate calls made.
	Requested int
	// Translated counts units written back.
	Translated int
	// Failures counts calls that errored or returned an empty string.
	Failures int
	// Abandoned is set when the failure ceiling stopped the document early.
	Abandoned bool
	// Pairs lists translated units in document order.
	Pairs []Pair
}

// Options configures Document.
type Options struct {
	Filter       Filter
	SourceLocale string
	TargetLocale string
	// MaxFailures is the failure ceiling; DefaultMaxFailures when <= 0.
	MaxFailures int
	// Translate is passed through to every translate call.
	Translate translator.Options
	// Now stamps translated units; time.Now when nil.
	Now func() time.Time

	// OnUnit, if set, is called after each unit is written back.
	OnUnit func(p Pair)
	// OnFailure, if set, is called for each failed translate call.
	OnFailure func(unitID string, err error)
}

// Document translates the candidate units of doc from opts.SourceLocale to
// opts.TargetLocale and merges the results into doc.
//
// A failed call leaves its unit untouched and counts toward the failure
// ceiling. Once the ceiling is reached no further calls are made for this
// document. Cancellation is checked before each unit; on cancellation the
// partial result is returned with ctx.Err().
func Document(ctx context.Context, doc *xliff.Document, tr translator.Translator, opts Options) (Result, error) {
	maxFailures := opts.MaxFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var res Result
	for _, u := range doc.Units() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !opts.Filter.Candidate(u) {
			continue
		}
		if res.Failures >= maxFailures {
			res.Abandoned = true
			break
		}

		src := u.Source()
		res.Requested++
		translated, err := tr.Translate(ctx, src, opts.SourceLocale, opts.TargetLocale, opts.Translate)
		if err == nil && translated == "" {
			err = ErrEmptyTranslation
		}
		if err != nil {
			res.Failures++
			if opts.OnFailure != nil {
				opts.OnFailure(u.ID(), err)
			}
			continue
		}

		if tr.ContainsHTML(translated) {
			u.SetCData(translated)
		} else {
			u.SetText(translated)
		}
		u.MarkMachineTranslated(now())
		res.Translated++

		p := Pair{ID: u.ID(), Source: src, Translated: translated}
		res.Pairs = append(res.Pairs, p)
		if opts.OnUnit != nil {
			opts.OnUnit(p)
		}
	}
	return res, nil
}
