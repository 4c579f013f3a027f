package emit

import (
	"io"

	"github.com/hupe1980/relpack/artifact"
	"github.com/hupe1980/relpack/packed"
)

// Binary emits the artifact file format.
type Binary struct {
	Compression artifact.Compression
}

func (*Binary) Name() string { return "binary" }

func (*Binary) Ext() string { return ".rpk" }

func (b *Binary) Emit(w io.Writer, art *packed.Artifact) error {
	data, err := artifact.Marshal(art, b.Compression)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
