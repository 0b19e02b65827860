package routesplit

import (
	"bufio"
	"cmp"
	"encoding/binary"
	"encoding/xml"
	"io"
	"slices"

	"github.com/zeebo/xxh3"
)

// Field is one named value of a Record.
type Field struct {
	Name  string
	Value string
}

// Record is one row decoded from a chunked document. Fields keep document
// order: attributes first, then child elements.
type Record struct {
	Element string
	Fields  []Field
}

// Get returns the value of the first field called name.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the value of the field called name, or "" if it is absent.
func (r Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Equal reports whether r and o have the same element and the same set of
// fields. Field order is ignored since attribute order carries no meaning.
func (r Record) Equal(o Record) bool {
	if r.Element != o.Element || len(r.Fields) != len(o.Fields) {
		return false
	}
	return slices.Equal(r.sortedFields(), o.sortedFields())
}

func (r Record) sortedFields() []Field {
	fs := slices.Clone(r.Fields)
	slices.SortFunc(fs, func(a, b Field) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return fs
}

// fingerprint hashes the element and the sorted fields. Each string is
// length-prefixed so adjacent values cannot run together.
func (r Record) fingerprint() uint64 {
	fs := r.sortedFields()
	size := 8 + len(r.Element)
	for _, f := range fs {
		size += 16 + len(f.Name) + len(f.Value)
	}

	buf := make([]byte, 0, size)
	put := func(s string) {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s)))
		buf = append(buf, s...)
	}
	put(r.Element)
	for _, f := range fs {
		put(f.Name)
		put(f.Value)
	}
	return xxh3.Hash(buf)
}

// defaultElement is used when writing a record with no element name.
const defaultElement = "Record"

// CheckFields returns a *DuplicateFieldError for the first record holding two
// fields with the same name. Such a record cannot be written as attributes.
func CheckFields(records []Record) error {
	seen := make(map[string]struct{})
	for _, r := range records {
		clear(seen)
		for _, f := range r.Fields {
			if _, ok := seen[f.Name]; ok {
				el := r.Element
				if el == "" {
					el = defaultElement
				}
				return &DuplicateFieldError{Element: el, Field: f.Name}
			}
			seen[f.Name] = struct{}{}
		}
	}
	return nil
}

// WriteRecords writes records as a single document in the given format, one
// element per line with every field as an attribute. Parsing the output with
// a Loader yields records equal to the input.
//
// Records are checked with CheckFields first; on error nothing is written.
func WriteRecords(w io.Writer, format DocumentFormat, records []Record) error {
	if err := CheckFields(records); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	bw.WriteString(format.Declaration)
	bw.WriteByte('\n')
	bw.WriteString(format.RootOpen)
	bw.WriteByte('\n')
	for _, r := range records {
		el := r.Element
		if el == "" {
			el = defaultElement
		}
		bw.WriteByte('<')
		bw.WriteString(el)
		for _, f := range r.Fields {
			bw.WriteByte(' ')
			bw.WriteString(f.Name)
			bw.WriteString(`="`)
			if err := xml.EscapeText(bw, []byte(f.Value)); err != nil {
				return err
			}
			bw.WriteByte('"')
		}
		bw.WriteString(" />\n")
	}
	bw.WriteString(format.RootClose)
	bw.WriteByte('\n')

	return bw.Flush()
}
