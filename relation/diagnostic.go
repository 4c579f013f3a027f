package relation

import (
	"errors"
	"fmt"
)

// Kind identifies a class of document problem.
type Kind uint8

const (
	// InvalidDocument is reported for empty or unreadable input.
	InvalidDocument Kind = iota + 1
	// InvalidHeader is reported when the header line is empty.
	InvalidHeader
	// InvalidRowLength is reported when a data line has a different number of
	// fields than the header.
	InvalidRowLength
)

// Severity of a diagnostic.
type Severity uint8

const (
	SeverityWarning Severity = iota + 1
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", s)
	}
}

// Descriptor is the fixed metadata of a Kind.
type Descriptor struct {
	ID       string
	Title    string
	Category string
	Severity Severity
}

var descriptors = [...]Descriptor{
	InvalidDocument:  {ID: "RPK001", Title: "invalid csv file", Category: "Relation", Severity: SeverityError},
	InvalidHeader:    {ID: "RPK002", Title: "invalid csv header", Category: "Relation", Severity: SeverityError},
	InvalidRowLength: {ID: "RPK003", Title: "invalid csv row", Category: "Relation", Severity: SeverityError},
}

// Descriptor returns the metadata of k.
func (k Kind) Descriptor() Descriptor {
	if int(k) < len(descriptors) && k > 0 {
		return descriptors[k]
	}
	return Descriptor{ID: "RPK000", Title: "unknown", Category: "Relation", Severity: SeverityError}
}

func (k Kind) String() string {
	switch k {
	case InvalidDocument:
		return "InvalidDocument"
	case InvalidHeader:
		return "InvalidHeader"
	case InvalidRowLength:
		return "InvalidRowLength"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Span is a 0-based, inclusive character range within a line.
// An empty line has End == -1.
type Span struct {
	Start int
	End   int
}

// Diagnostic locates a problem in a document.
type Diagnostic struct {
	Kind Kind
	Path string
	Line int
	Span Span
	Text string
}

func newDiagnostic(kind Kind, path string, line int, text string) Diagnostic {
	return Diagnostic{
		Kind: kind,
		Path: path,
		Line: line,
		Span: Span{Start: 0, End: len(text) - 1},
		Text: text,
	}
}

// NewDocumentDiagnostic returns an InvalidDocument diagnostic for path.
func NewDocumentDiagnostic(path string) Diagnostic {
	return newDiagnostic(InvalidDocument, path, 0, "")
}

func (d Diagnostic) Error() string {
	desc := d.Kind.Descriptor()
	return fmt.Sprintf("%s:%d:%d-%d: %s %s: %s", d.Path, d.Line, d.Span.Start, d.Span.End, desc.ID, desc.Severity, desc.Title)
}

// Diagnostics is the list of problems found in one document.
type Diagnostics []Diagnostic

// Err returns nil when there are no diagnostics, the single diagnostic, or
// all of them joined.
func (ds Diagnostics) Err() error {
	switch len(ds) {
	case 0:
		return nil
	case 1:
		return ds[0]
	}
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// Has reports whether any diagnostic is of kind k.
func (ds Diagnostics) Has(k Kind) bool {
	for _, d := range ds {
		if d.Kind == k {
			return true
		}
	}
	return false
}
