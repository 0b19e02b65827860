package routesplit

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match these via errors.Is.
var (
	// ErrMalformedInput is returned when an export file cannot be tokenized.
	ErrMalformedInput = errors.New("malformed input")

	// ErrParse is returned when a chunked document is not valid markup.
	ErrParse = errors.New("document parse failed")

	// ErrInfeasibleAssignment is returned when there are more sessions than groups.
	ErrInfeasibleAssignment = errors.New("infeasible assignment")

	// ErrNoSessions is returned when the session list is empty.
	ErrNoSessions = errors.New("no sessions supplied")

	// ErrDuplicateSession is returned when a session ID appears twice.
	ErrDuplicateSession = errors.New("duplicate session id")

	// ErrUnassignedGroup is returned when a record's group has no session.
	ErrUnassignedGroup = errors.New("group has no assigned session")

	// ErrInvalidChunkSize is returned when MaxLinesPerChunk is less than one.
	ErrInvalidChunkSize = errors.New("max lines per chunk must be at least 1")

	// ErrUnknownPrefix is returned when a record carries an unsupported key prefix.
	ErrUnknownPrefix = errors.New("unknown key prefix")

	// ErrDuplicateField is returned when a record to be written holds two
	// fields with the same name.
	ErrDuplicateField = errors.New("duplicate field name")
)

// MalformedInputError reports an export file that contains no tag boundary.
type MalformedInputError struct {
	File string
}

func (e *MalformedInputError) Error() string {
	if e.File == "" {
		return "malformed input: no '>' found"
	}
	return fmt.Sprintf("malformed input %q: no '>' found", e.File)
}

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// ParseError names the chunked document that failed to parse.
type ParseError struct {
	Document string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Document, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// InfeasibleAssignmentError reports that not every session could receive a group.
type InfeasibleAssignmentError struct {
	Sessions int
	Groups   int
}

func (e *InfeasibleAssignmentError) Error() string {
	return fmt.Sprintf("infeasible assignment: %d sessions but only %d groups", e.Sessions, e.Groups)
}

func (e *InfeasibleAssignmentError) Is(target error) bool { return target == ErrInfeasibleAssignment }

// UnknownPrefixError reports a record whose key prefix is not configured.
type UnknownPrefixError struct {
	Field  string
	Prefix string
}

func (e *UnknownPrefixError) Error() string {
	return fmt.Sprintf("unknown key prefix %q in field %s", e.Prefix, e.Field)
}

func (e *UnknownPrefixError) Is(target error) bool { return target == ErrUnknownPrefix }

// DuplicateFieldError reports a record that cannot be written as attributes
// because two of its fields share a name, as happens when a source record had
// both an attribute and a child element called Field.
type DuplicateFieldError struct {
	Element string
	Field   string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("record <%s> has field %s more than once", e.Element, e.Field)
}

func (e *DuplicateFieldError) Is(target error) bool { return target == ErrDuplicateField }

// DuplicateRecordWarning describes a record dropped by deduplication. It is
// never returned from Run; it is handed to DuplicateHandler and logged.
type DuplicateRecordWarning struct {
	Record     Record
	FirstIndex int // position of the kept record in the loaded set
	Index      int // position of the dropped record in the loaded set
}

func (w DuplicateRecordWarning) Error() string {
	return fmt.Sprintf("duplicate record at %d (first seen at %d)", w.Index, w.FirstIndex)
}
