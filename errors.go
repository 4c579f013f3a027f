package relpack

import (
	"errors"
	"fmt"

	"github.com/hupe1980/relpack/emit"
	"github.com/hupe1980/relpack/relation"
)

var (
	// ErrNoDocuments is returned by Build when the build file selects no map
	// documents.
	ErrNoDocuments = errors.New("relpack: no map documents")
)

// ErrUnsupportedFormat is returned for an unknown output format.
type ErrUnsupportedFormat = emit.ErrUnsupportedFormat

// ErrDocumentFailed reports a document that was not compiled because of
// diagnostics.
//
// The diagnostics can be accessed via errors.As on relation.Diagnostic.
type ErrDocumentFailed struct {
	Path        string
	Name        string
	Diagnostics relation.Diagnostics
}

func (e *ErrDocumentFailed) Error() string {
	return fmt.Sprintf("relpack: %s (%s): %d diagnostic(s), first: %v", e.Path, e.Name, len(e.Diagnostics), e.first())
}

func (e *ErrDocumentFailed) first() error {
	if len(e.Diagnostics) == 0 {
		return nil
	}
	return e.Diagnostics[0]
}

func (e *ErrDocumentFailed) Unwrap() error { return e.Diagnostics.Err() }

// ErrDuplicateBlob indicates two documents that would be emitted to the same
// blob, which happens when their relations share a simple name.
type ErrDuplicateBlob struct {
	Blob   string
	First  string
	Second string
}

func (e *ErrDuplicateBlob) Error() string {
	return fmt.Sprintf("relpack: %s and %s both emit %s", e.First, e.Second, e.Blob)
}
