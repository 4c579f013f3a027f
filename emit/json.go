package emit

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/relpack/codec"
	"github.com/hupe1980/relpack/packed"
)

// Document is the JSON form of an artifact. Bits is base64 encoded.
type Document struct {
	Name           string   `json:"name"`
	Namespace      string   `json:"namespace"`
	SimpleName     string   `json:"simple_name"`
	RowDomain      string   `json:"row_domain"`
	ColumnDomain   string   `json:"column_domain"`
	RowMembers     []string `json:"row_members"`
	ColumnMembers  []string `json:"column_members"`
	RowCount       int      `json:"row_count"`
	ColumnCount    int      `json:"column_count"`
	BytesPerColumn int      `json:"bytes_per_column"`
	Bits           []byte   `json:"bits"`
}

// JSON emits a Document.
type JSON struct {
	Codec  codec.Codec
	Indent bool
}

func (*JSON) Name() string { return "json" }

func (*JSON) Ext() string { return ".json" }

func (j *JSON) Emit(w io.Writer, art *packed.Artifact) error {
	data, err := codec.Encode(j.Codec, NewDocument(art), j.Indent)
	if err != nil {
		return fmt.Errorf("emit: encode %s: %w", art.Name, err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// NewDocument converts art to its JSON form.
func NewDocument(art *packed.Artifact) *Document {
	return &Document{
		Name:           art.Name,
		Namespace:      art.Namespace(),
		SimpleName:     art.SimpleName(),
		RowDomain:      art.RowDomain,
		ColumnDomain:   art.ColumnDomain,
		RowMembers:     art.RowMembers,
		ColumnMembers:  art.ColumnMembers,
		RowCount:       art.RowCount,
		ColumnCount:    art.ColumnCount,
		BytesPerColumn: art.BytesPerColumn,
		Bits:           art.Bits,
	}
}

var errDocumentShape = errors.New("emit: document dimensions do not match its contents")

// Artifact converts d back into an artifact, checking that its dimensions are
// consistent.
func (d *Document) Artifact() (*packed.Artifact, error) {
	if len(d.RowMembers) != d.RowCount ||
		len(d.ColumnMembers) != d.ColumnCount ||
		d.BytesPerColumn != packed.BytesPerColumn(d.RowCount) ||
		len(d.Bits) != d.BytesPerColumn*d.ColumnCount {
		return nil, errDocumentShape
	}
	return &packed.Artifact{
		Name:           d.Name,
		RowDomain:      d.RowDomain,
		ColumnDomain:   d.ColumnDomain,
		RowMembers:     d.RowMembers,
		ColumnMembers:  d.ColumnMembers,
		RowCount:       d.RowCount,
		ColumnCount:    d.ColumnCount,
		BytesPerColumn: d.BytesPerColumn,
		Bits:           d.Bits,
	}, nil
}

// DecodeJSON parses data written by JSON.Emit.
func DecodeJSON(data []byte, c codec.Codec) (*packed.Artifact, error) {
	var d Document
	if err := codec.Or(c).Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d.Artifact()
}
