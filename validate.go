package routesplit

import "context"

// Default prefix validation: the first three characters of the inventory
// transaction ID carry the legal-entity code.
const (
	DefaultPrefixField  = "INVENTTRANSID"
	DefaultPrefixLength = 3
)

// PrefixValidator rejects record sets containing a record whose Field value
// starts with a prefix outside Known. It implements [Validator], so a job can
// embed or return one to stop a run before any output is produced.
type PrefixValidator struct {
	Field  string
	Length int
	Known  map[string]struct{}
}

var _ Validator = (*PrefixValidator)(nil)

// NewPrefixValidator creates a validator over the default field and length
// accepting the given codes.
func NewPrefixValidator(known ...string) *PrefixValidator {
	v := &PrefixValidator{
		Field:  DefaultPrefixField,
		Length: DefaultPrefixLength,
		Known:  make(map[string]struct{}, len(known)),
	}
	for _, k := range known {
		v.Known[k] = struct{}{}
	}
	return v
}

// Prefix returns the key prefix of r.
func (v *PrefixValidator) Prefix(r Record) string {
	val := r.Value(v.Field)
	if len(val) > v.Length {
		return val[:v.Length]
	}
	return val
}

// Validate returns an *UnknownPrefixError for the first record whose prefix
// is not known.
func (v *PrefixValidator) Validate(_ context.Context, records []Record) error {
	for _, r := range records {
		p := v.Prefix(r)
		if _, ok := v.Known[p]; !ok {
			return &UnknownPrefixError{Field: v.Field, Prefix: p}
		}
	}
	return nil
}
