package routesplit

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Loader decodes chunked documents into records.
//
// Every direct child of the root element is one record. Its attributes and
// the text of its own child elements become fields; anything nested deeper is
// skipped.
type Loader struct {
	drop map[string]struct{}
}

// NewLoader creates a Loader that removes the named fields from every record.
func NewLoader(dropFields ...string) *Loader {
	l := &Loader{drop: make(map[string]struct{}, len(dropFields))}
	for _, f := range dropFields {
		l.drop[f] = struct{}{}
	}
	return l
}

// ParseDocument decodes one chunked document.
func (l *Loader) ParseDocument(doc Document) ([]Record, error) {
	return l.Parse(doc.Name, bytes.NewReader(doc.Bytes()))
}

// Load decodes every document and concatenates the records in document order.
// The first document that fails to parse aborts the load.
func (l *Loader) Load(docs []Document) ([]Record, error) {
	var records []Record
	for _, doc := range docs {
		recs, err := l.ParseDocument(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// Parse decodes the document read from r. Any markup error, a missing or
// unterminated root, or a second root element yields a *ParseError naming
// name.
func (l *Loader) Parse(name string, r io.Reader) ([]Record, error) {
	fail := func(err error) ([]Record, error) {
		return nil, &ParseError{Document: name, Err: err}
	}

	dec := xml.NewDecoder(r)
	var (
		records  []Record
		current  Record
		depth    int
		rootSeen bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch depth {
			case 0:
				if rootSeen {
					return fail(errors.New("multiple root elements"))
				}
				rootSeen = true
				depth++
			case 1:
				current = Record{Element: t.Name.Local}
				for _, a := range t.Attr {
					if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
						continue
					}
					l.add(&current, a.Name.Local, a.Value)
				}
				depth++
			default:
				text, err := elementText(dec)
				if err != nil {
					return fail(err)
				}
				l.add(&current, t.Name.Local, text)
			}
		case xml.EndElement:
			depth--
			if depth == 1 {
				records = append(records, current)
				current = Record{}
			}
		}
	}

	if !rootSeen {
		return fail(errors.New("no root element"))
	}
	if depth != 0 {
		return fail(io.ErrUnexpectedEOF)
	}
	return records, nil
}

func (l *Loader) add(r *Record, name, value string) {
	if _, ok := l.drop[name]; ok {
		return
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// elementText consumes tokens up to and including the end of the element whose
// start was just read, returning its trimmed direct text.
func elementText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", err
			}
		case xml.EndElement:
			return strings.TrimSpace(sb.String()), nil
		}
	}
}

// Dedup removes exact duplicate records, keeping the first occurrence, and
// returns a warning for each record removed. Order is preserved.
func Dedup(records []Record) ([]Record, []DuplicateRecordWarning) {
	kept := make([]Record, 0, len(records))
	// fingerprint -> indexes into records of kept records with that hash
	seen := make(map[uint64][]int, len(records))
	var dups []DuplicateRecordWarning

	for i, r := range records {
		h := r.fingerprint()
		first := -1
		for _, j := range seen[h] {
			if records[j].Equal(r) {
				first = j
				break
			}
		}
		if first >= 0 {
			dups = append(dups, DuplicateRecordWarning{Record: r, FirstIndex: first, Index: i})
			continue
		}
		seen[h] = append(seen[h], i)
		kept = append(kept, r)
	}
	return kept, dups
}
