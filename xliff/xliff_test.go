package xliff

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sample = `<?xml version="1.0" encoding="utf-8"?>
<xliff xmlns="urn:oasis:names:tc:xliff:document:1.2" version="1.2">
  <file source-language="en" target-language="es" datatype="plaintext" original="messages">
    <body>
      <!-- greeting -->
      <trans-unit id="hello" resname="hello">
        <source>Hello</source>
        <target state="new">Hello</target>
        <note>Shown on the home page</note>
      </trans-unit>
      <trans-unit id="bold">
        <source><![CDATA[<b>Bold</b>]]></source>
        <target><![CDATA[<b>Bold</b>]]></target>
      </trans-unit>
      <group id="g1">
        <trans-unit id="nested">
          <source>Nested &amp; escaped</source>
          <target>Anidado</target>
        </trans-unit>
      </group>
      <trans-unit id="notarget">
        <source>Orphan</source>
      </trans-unit>
    </body>
  </file>
</xliff>
`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	d, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return d
}

func TestParse_Units(t *testing.T) {
	d := mustParse(t, sample)

	if d.Version() != "1.2" {
		t.Errorf("Version = %q, want 1.2", d.Version())
	}

	units := d.Units()
	if len(units) != 4 {
		t.Fatalf("got %d units, want 4", len(units))
	}

	want := []struct {
		id, source, target string
	}{
		{"hello", "Hello", "Hello"},
		{"bold", "<b>Bold</b>", "<b>Bold</b>"},
		{"nested", "Nested & escaped", "Anidado"},
		{"notarget", "Orphan", ""},
	}
	for i, w := range want {
		u := units[i]
		if u.ID() != w.id || u.Source() != w.source || u.Target() != w.target {
			t.Errorf("unit %d = (%q, %q, %q), want (%q, %q, %q)",
				i, u.ID(), u.Source(), u.Target(), w.id, w.source, w.target)
		}
	}

	if units[3].HasTarget() {
		t.Error("notarget should have no target")
	}
	if st, ok := units[0].TargetState(); !ok || st != "new" {
		t.Errorf("TargetState = %q, %v; want new, true", st, ok)
	}
	if _, ok := units[1].TargetState(); ok {
		t.Error("bold target should have no state")
	}
}

func TestParse_NotXLIFF(t *testing.T) {
	_, err := Parse([]byte(`<?xml version="1.0"?><resources><string name="a">b</string></resources>`))
	if !errors.Is(err, ErrNotXLIFF) {
		t.Errorf("err = %v, want ErrNotXLIFF", err)
	}

	if _, err := Parse([]byte("<xliff><file>")); err == nil {
		t.Error("expected error for truncated XML")
	}
}

func TestMarshal_Untouched(t *testing.T) {
	d := mustParse(t, sample)
	out, err := d.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != sample {
		t.Errorf("round trip changed the document:\n%s", out)
	}
}

func TestSetText_Escaped(t *testing.T) {
	d := mustParse(t, sample)
	u := d.Units()[0]
	u.SetText("Hola & adiós")

	if u.Target() != "Hola & adiós" {
		t.Errorf("Target = %q", u.Target())
	}
	out, _ := d.Marshal()
	s := string(out)
	if !strings.Contains(s, `<target state="new">Hola &amp; adiós</target>`) {
		t.Errorf("target not written as escaped text, attributes must be kept:\n%s", s)
	}
	if !strings.Contains(s, "<note>Shown on the home page</note>") {
		t.Error("sibling elements must be preserved")
	}
}

func TestSetCData(t *testing.T) {
	d := mustParse(t, sample)
	u := d.Units()[0]
	u.SetCData("<b>Hola</b>")

	out, _ := d.Marshal()
	if !strings.Contains(string(out), `<target state="new"><![CDATA[<b>Hola</b>]]></target>`) {
		t.Errorf("target not written as CDATA:\n%s", out)
	}

	// Reparsing yields the raw markup back.
	d2 := mustParse(t, string(out))
	if got := d2.Units()[0].Target(); got != "<b>Hola</b>" {
		t.Errorf("reparsed target = %q", got)
	}
}

func TestSetCData_SplitsTerminator(t *testing.T) {
	d := mustParse(t, sample)
	d.Units()[0].SetCData("<b>a]]>b</b>")

	out, err := d.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `<![CDATA[<b>a]]]]><![CDATA[>b</b>]]>`) {
		t.Errorf("terminator not split across sections:\n%s", out)
	}

	d2 := mustParse(t, string(out))
	if got := d2.Units()[0].Target(); got != "<b>a]]>b</b>" {
		t.Errorf("reparsed target = %q", got)
	}
}

func TestSetCData_ReplacesMixedContent(t *testing.T) {
	d := mustParse(t, `<xliff version="1.2"><file><body>
<trans-unit id="x"><source>a</source><target>a<g id="1">b</g>c</target></trans-unit>
</body></file></xliff>`)
	u := d.Units()[0]
	u.SetCData("<i>z</i>")

	out, _ := d.Marshal()
	if !strings.Contains(string(out), "<target><![CDATA[<i>z</i>]]></target>") {
		t.Errorf("mixed content not fully replaced:\n%s", out)
	}
}

func TestSetText_CreatesTarget(t *testing.T) {
	d := mustParse(t, sample)
	u := d.Units()[3]
	u.SetText("Huérfano")

	if !u.HasTarget() || u.Target() != "Huérfano" {
		t.Fatalf("target not created: %q", u.Target())
	}
	out, _ := d.Marshal()
	if !strings.Contains(string(out), "<source>Orphan</source><target>Huérfano</target>") {
		t.Errorf("target should follow source:\n%s", out)
	}
}

func TestMarkMachineTranslated(t *testing.T) {
	d := mustParse(t, sample)
	u := d.Units()[0]
	if u.IsMachineTranslated() {
		t.Fatal("fresh unit should not be marked")
	}

	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)
	u.MarkMachineTranslated(at)
	u.MarkMachineTranslated(at)

	if !u.IsMachineTranslated() {
		t.Error("unit should be marked")
	}
	if v, _ := u.Attr(AttrMachineTranslated); v != "1" {
		t.Errorf("%s = %q, want 1", AttrMachineTranslated, v)
	}
	if v, _ := u.Attr(AttrMachineTranslatedDate); v != "2024-03-05 14:07:09" {
		t.Errorf("%s = %q", AttrMachineTranslatedDate, v)
	}

	out, _ := d.Marshal()
	if n := strings.Count(string(out), AttrMachineTranslatedDate+"="); n != 1 {
		t.Errorf("date attribute written %d times, want 1", n)
	}
	if !strings.Contains(string(out), `resname="hello" machinetranslated="1"`) {
		t.Errorf("existing attributes must be kept in order:\n%s", out)
	}
}

func TestWriteFile_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messages.es.xlf")
	if err := os.WriteFile(path, []byte(sample), 0600); err != nil {
		t.Fatal(err)
	}

	d, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	d.Units()[0].SetText("Hola")
	if err := d.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", fi.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %d entries", len(entries))
	}

	d2, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := d2.Units()[0].Target(); got != "Hola" {
		t.Errorf("Target = %q, want Hola", got)
	}
}

func TestWriteFile_MissingDir(t *testing.T) {
	d := mustParse(t, sample)
	err := d.WriteFile(filepath.Join(t.TempDir(), "nope", "x.es.xlf"))
	if err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
