// Package xliff implements reading and in-place editing of XLIFF 1.2
// catalog files.
//
// Structure:
//
//	<xliff version="1.2">
//	  <file source-language="en" target-language="es" datatype="plaintext" original="messages">
//	    <body>
//	      <trans-unit id="greeting">
//	        <source>Hello</source>
//	        <target state="new">Hello</target>
//	      </trans-unit>
//	    </body>
//	  </file>
//	</xliff>
//
// The Document keeps the whole parsed tree, so serialization reproduces
// everything the editor did not touch: processing instructions, comments,
// whitespace, unknown elements and attributes. Units nested in <group>
// elements are visited as well.
package xliff

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// Attributes owned by the machine translator.
const (
	// AttrMachineTranslated marks a unit whose target was machine translated.
	AttrMachineTranslated = "machinetranslated"
	// AttrMachineTranslatedDate holds the local time of the translation.
	AttrMachineTranslatedDate = "datemachinetranslated"
	// AttrState is the XLIFF target state attribute.
	AttrState = "state"
	// DateFormat is the layout of AttrMachineTranslatedDate.
	DateFormat = "2006-01-02 15:04:05"
)

// ErrNotXLIFF is returned when the document root is not an <xliff> element.
var ErrNotXLIFF = errors.New("not an XLIFF document")

// ---------------------------------------------------------------------------
// Document
// ---------------------------------------------------------------------------

// Document is a parsed XLIFF file.
type Document struct {
	doc *etree.Document
}

// ParseFile reads and parses an XLIFF file from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return d, nil
}

// Parse parses XLIFF content from a byte slice.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true

	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil || root.Tag != "xliff" {
		return nil, ErrNotXLIFF
	}
	return &Document{doc: doc}, nil
}

// Version returns the xliff version attribute.
func (d *Document) Version() string {
	return d.doc.Root().SelectAttrValue("version", "")
}

// Units returns every trans-unit of every <file> in document order.
func (d *Document) Units() []*Unit {
	var units []*Unit
	for _, file := range d.doc.Root().SelectElements("file") {
		for _, body := range file.SelectElements("body") {
			units = collectUnits(body, units)
		}
	}
	return units
}

func collectUnits(parent *etree.Element, units []*Unit) []*Unit {
	for _, el := range parent.ChildElements() {
		switch el.Tag {
		case "trans-unit":
			units = append(units, &Unit{el: el})
		case "group":
			units = collectUnits(el, units)
		}
	}
	return units
}

// Marshal serialises the document back to XML.
func (d *Document) Marshal() ([]byte, error) {
	return d.doc.WriteToBytes()
}

// WriteFile serialises the document and atomically replaces path with it.
// The content is written to a temporary file in the same directory which is
// then renamed over path, so readers never observe a partial file. The mode
// of an existing file is kept.
func (d *Document) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("serialising %s: %w", path, err)
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Unit
// ---------------------------------------------------------------------------

// Unit is a single <trans-unit> of a Document. Edits are applied directly to
// the owning document's tree.
type Unit struct {
	el *etree.Element
}

// ID returns the unit's id attribute.
func (u *Unit) ID() string {
	return u.el.SelectAttrValue("id", "")
}

// Source returns the direct character data of the <source> element.
// Text nested in inline elements such as <g> is not included.
func (u *Unit) Source() string {
	return elementText(u.el.SelectElement("source"))
}

// Target returns the text of the <target> element.
func (u *Unit) Target() string {
	return elementText(u.el.SelectElement("target"))
}

// HasTarget reports whether the unit has a <target> element.
func (u *Unit) HasTarget() bool {
	return u.el.SelectElement("target") != nil
}

// TargetState returns the target's state attribute and whether it is set.
func (u *Unit) TargetState() (string, bool) {
	t := u.el.SelectElement("target")
	if t == nil {
		return "", false
	}
	a := t.SelectAttr(AttrState)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// Attr returns the value of a unit attribute and whether it exists.
func (u *Unit) Attr(key string) (string, bool) {
	a := u.el.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// SetAttr creates or overwrites a unit attribute.
func (u *Unit) SetAttr(key, value string) {
	u.el.CreateAttr(key, value)
}

// IsMachineTranslated reports whether the unit carries the machine
// translation marker, whatever its value.
func (u *Unit) IsMachineTranslated() bool {
	_, ok := u.Attr(AttrMachineTranslated)
	return ok
}

// MarkMachineTranslated stamps the unit with the machine translation marker
// and the given time in local time.
func (u *Unit) MarkMachineTranslated(at time.Time) {
	u.SetAttr(AttrMachineTranslated, "1")
	u.SetAttr(AttrMachineTranslatedDate, at.Local().Format(DateFormat))
}

// SetText replaces the target's content, inline elements included, with
// plain text. The text is escaped on serialization.
func (u *Unit) SetText(text string) {
	t := u.target()
	clearChildren(t)
	t.CreateText(text)
}

// SetCData replaces the target's content with CDATA holding text
// verbatim. An embedded "]]>" is split across adjacent sections.
func (u *Unit) SetCData(text string) {
	t := u.target()
	clearChildren(t)
	parts := strings.Split(text, "]]>")
	for i, p := range parts {
		if i > 0 {
			p = ">" + p
		}
		if i < len(parts)-1 {
			p += "]]"
		}
		t.CreateCData(p)
	}
}

// target returns the <target> element, creating it right after <source>
// when missing.
func (u *Unit) target() *etree.Element {
	if t := u.el.SelectElement("target"); t != nil {
		return t
	}
	t := etree.NewElement("target")
	if src := u.el.SelectElement("source"); src != nil {
		u.el.InsertChildAt(src.Index()+1, t)
	} else {
		u.el.AddChild(t)
	}
	return t
}

// elementText returns the concatenation of the element's direct character
// data, CDATA included. Text inside child elements is not part of it.
func elementText(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var b strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}

func clearChildren(el *etree.Element) {
	for i := len(el.Child) - 1; i >= 0; i-- {
		el.RemoveChildAt(i)
	}
}
