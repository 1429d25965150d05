package merge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/xlfkit/translator"
	"github.com/minios-linux/xlfkit/xliff"
)

// fakeTranslator upper-cases text, or fails for texts listed in fail.
type fakeTranslator struct {
	fail  map[string]bool
	empty bool
	calls []string
}

func (f *fakeTranslator) Provider() string               { return "fake" }
func (f *fakeTranslator) NormalizeLocale(c string) string { return c }
func (f *fakeTranslator) ContainsHTML(s string) bool      { return translator.ContainsHTML(s) }

func (f *fakeTranslator) DetectLanguage(context.Context, string) (string, error) {
	return "", translator.ErrNotSupported
}

func (f *fakeTranslator) Translate(_ context.Context, text, from, to string, _ translator.Options) (string, error) {
	f.calls = append(f.calls, text)
	if f.fail[text] {
		return "", fmt.Errorf("remote failure for %q", text)
	}
	if f.empty {
		return "", nil
	}
	return strings.ToUpper(text) + " [" + to + "]", nil
}

func unit(id, source, target, attrs string) string {
	return fmt.Sprintf(`<trans-unit id=%q%s><source>%s</source><target>%s</target></trans-unit>`,
		id, attrs, source, target)
}

func unitState(id, source, target, state string) string {
	return fmt.Sprintf(`<trans-unit id=%q><source>%s</source><target state=%q>%s</target></trans-unit>`,
		id, source, state, target)
}

func doc(t *testing.T, units ...string) *xliff.Document {
	t.Helper()
	s := `<?xml version="1.0" encoding="utf-8"?>` + "\n" +
		`<xliff version="1.2"><file source-language="en" target-language="es"><body>` +
		strings.Join(units, "") +
		`</body></file></xliff>`
	d, err := xliff.Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

var fixedNow = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local) }

func baseOptions() Options {
	return Options{SourceLocale: "en_GB", TargetLocale: "es", Now: fixedNow}
}

// ---------------------------------------------------------------------------
// Filter
// ---------------------------------------------------------------------------

func TestFilter_Candidate(t *testing.T) {
	d := doc(t,
		unit("same", "Hello", "Hello", ""),
		unit("done", "Hello", "Hola", ""),
		unit("emptytarget", "Hello", "", ""),
		unit("emptysource", "", "", ""),
		unitState("new", "Save", "Save", "new"),
		unitState("reviewed", "Open", "Open", "translated"),
		unit("mt", "Close", "Close", ` machinetranslated="1"`),
	)
	units := d.Units()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"default", Filter{}, []string{"same", "new", "reviewed", "mt"}},
		{"new only", Filter{NewOnly: true}, []string{"new"}},
		{"memory", Filter{Memory: true}, []string{"same", "new", "reviewed"}},
		{"both", Filter{NewOnly: true, Memory: true}, []string{"new"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, u := range units {
				if tt.filter.Candidate(u) {
					got = append(got, u.ID())
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("candidates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// A machine-translated unit whose target was reset to the source text is
// only protected by the memory guard, not by the equality guard.
func TestFilter_MemoryGuardIndependent(t *testing.T) {
	d := doc(t, unit("mt", "Close", "Close", ` machinetranslated="1"`))
	u := d.Units()[0]

	if !(Filter{}).Candidate(u) {
		t.Error("without memory mode the unit should be retranslated")
	}
	if (Filter{Memory: true}).Candidate(u) {
		t.Error("memory mode should skip machine translated units")
	}
}

// ---------------------------------------------------------------------------
// Document
// ---------------------------------------------------------------------------

func TestDocument_TranslatesAndStamps(t *testing.T) {
	d := doc(t,
		unit("a", "Hello", "Hello", ""),
		unit("b", "Bye", "Adiós", ""),
	)
	tr := &fakeTranslator{}

	var seen []Pair
	opts := baseOptions()
	opts.OnUnit = func(p Pair) { seen = append(seen, p) }

	res, err := Document(context.Background(), d, tr, opts)
	if err != nil {
		t.Fatal(err)
	}

	want := Result{
		Requested:  1,
		Translated: 1,
		Pairs:      []Pair{{ID: "a", Source: "Hello", Translated: "HELLO [es]"}},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Pairs, seen); diff != "" {
		t.Errorf("OnUnit mismatch (-want +got):\n%s", diff)
	}

	u := d.Units()[0]
	if u.Target() != "HELLO [es]" {
		t.Errorf("target = %q", u.Target())
	}
	if v, _ := u.Attr(xliff.AttrMachineTranslated); v != "1" {
		t.Errorf("marker = %q", v)
	}
	if v, _ := u.Attr(xliff.AttrMachineTranslatedDate); v != "2024-01-02 03:04:05" {
		t.Errorf("date = %q", v)
	}

	// The already translated unit is untouched.
	u2 := d.Units()[1]
	if u2.Target() != "Adiós" || u2.IsMachineTranslated() {
		t.Errorf("translated unit was modified: %q", u2.Target())
	}
}

func TestDocument_HTMLWrittenAsCData(t *testing.T) {
	d := doc(t, unit("a", "&lt;b&gt;Hi&lt;/b&gt;", "&lt;b&gt;Hi&lt;/b&gt;", ""))

	if _, err := Document(context.Background(), d, &fakeTranslator{}, baseOptions()); err != nil {
		t.Fatal(err)
	}
	out, _ := d.Marshal()
	if !strings.Contains(string(out), "<target><![CDATA[<B>HI</B> [es]]]></target>") {
		t.Errorf("markup not written as CDATA:\n%s", out)
	}
}

func TestDocument_PlainTextEscaped(t *testing.T) {
	d := doc(t, unit("a", "Fish &amp; chips", "Fish &amp; chips", ""))

	if _, err := Document(context.Background(), d, &fakeTranslator{}, baseOptions()); err != nil {
		t.Fatal(err)
	}
	out, _ := d.Marshal()
	if !strings.Contains(string(out), "<target>FISH &amp; CHIPS [es]</target>") {
		t.Errorf("plain text not escaped:\n%s", out)
	}
}

func TestDocument_FailuresLeaveUnitUntouched(t *testing.T) {
	d := doc(t,
		unit("a", "One", "One", ""),
		unit("b", "Two", "Two", ""),
	)
	tr := &fakeTranslator{fail: map[string]bool{"One": true}}

	var failed []string
	opts := baseOptions()
	opts.OnFailure = func(id string, err error) { failed = append(failed, id) }

	res, err := Document(context.Background(), d, tr, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Requested != 2 || res.Translated != 1 || res.Failures != 1 || res.Abandoned {
		t.Errorf("result = %+v", res)
	}
	if diff := cmp.Diff([]string{"a"}, failed); diff != "" {
		t.Errorf("OnFailure mismatch (-want +got):\n%s", diff)
	}
	if u := d.Units()[0]; u.Target() != "One" || u.IsMachineTranslated() {
		t.Error("failed unit must stay untouched")
	}
}

func TestDocument_EmptyResultIsFailure(t *testing.T) {
	d := doc(t, unit("a", "One", "One", ""))

	var gotErr error
	opts := baseOptions()
	opts.OnFailure = func(_ string, err error) { gotErr = err }

	res, err := Document(context.Background(), d, &fakeTranslator{empty: true}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Failures != 1 || res.Translated != 0 {
		t.Errorf("result = %+v", res)
	}
	if !errors.Is(gotErr, ErrEmptyTranslation) {
		t.Errorf("OnFailure err = %v, want ErrEmptyTranslation", gotErr)
	}
}

func TestDocument_FailureCeiling(t *testing.T) {
	var units []string
	fail := map[string]bool{}
	for i := 0; i < 15; i++ {
		s := fmt.Sprintf("s%02d", i)
		units = append(units, unit(s, s, s, ""))
		fail[s] = true
	}
	d := doc(t, units...)
	tr := &fakeTranslator{fail: fail}

	res, err := Document(context.Background(), d, tr, baseOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.calls) != DefaultMaxFailures {
		t.Errorf("translator called %d times, want %d", len(tr.calls), DefaultMaxFailures)
	}
	if res.Requested != DefaultMaxFailures || res.Failures != DefaultMaxFailures || !res.Abandoned {
		t.Errorf("result = %+v", res)
	}
}

func TestDocument_CeilingCountsCumulativeFailures(t *testing.T) {
	// Failures interleaved with successes still add up to the ceiling.
	var units []string
	fail := map[string]bool{}
	for i := 0; i < 8; i++ {
		ok := fmt.Sprintf("ok%d", i)
		bad := fmt.Sprintf("bad%d", i)
		units = append(units, unit(ok, ok, ok, ""), unit(bad, bad, bad, ""))
		fail[bad] = true
	}
	d := doc(t, units...)

	opts := baseOptions()
	opts.MaxFailures = 3
	res, err := Document(context.Background(), d, &fakeTranslator{fail: fail}, opts)
	if err != nil {
		t.Fatal(err)
	}
	// ok0 bad0 ok1 bad1 ok2 bad2 -> stop
	if res.Translated != 3 || res.Failures != 3 || res.Requested != 6 || !res.Abandoned {
		t.Errorf("result = %+v", res)
	}
}

func TestDocument_Cancelled(t *testing.T) {
	d := doc(t, unit("a", "One", "One", ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &fakeTranslator{}
	res, err := Document(ctx, d, tr, baseOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res.Requested != 0 || len(tr.calls) != 0 {
		t.Errorf("no calls expected after cancellation, got %+v", res)
	}
}

func TestDocument_NonDestructive(t *testing.T) {
	d := doc(t,
		unit("done", "Save", "Guardar", ""),
		unitState("final", "Open", "Abrir", "final"),
	)
	before, _ := d.Marshal()

	tr := &fakeTranslator{}
	res, err := Document(context.Background(), d, tr, baseOptions())
	if err != nil {
		t.Fatal(err)
	}
	after, _ := d.Marshal()

	if res.Requested != 0 || len(tr.calls) != 0 {
		t.Errorf("translated units must not be sent: %+v", res)
	}
	if string(before) != string(after) {
		t.Errorf("document changed:\n%s\n---\n%s", before, after)
	}
}
