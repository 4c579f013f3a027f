// Package relpack compiles sparse boolean relations into bit-packed lookup
// tables.
//
// A relation document is comma-separated text. The first field of the header
// names the row and column domains ("Animal/Color"), the remaining header
// fields are the column members, and every data line starts with a row member
// followed by one field per column. A non-empty field marks the pair as
// related:
//
//	Animal/Color,Red,Green,Blue
//	Cat,,x,
//	Dog,x,,x
//
// Compiling packs the cells column-major, one bit per cell, and answers
// Lookup(row, column) in constant time:
//
//	offset := row + column*rowCount
//	bits[offset/8]&(1<<(offset%8)) != 0
//
// # Quick Start
//
//	c := relpack.New(relpack.WithVerify(true))
//	res, err := c.Compile(ctx, relpack.Source{
//	    Path: "Maps/AnimalColor.csv",
//	    Name: "colors.AnimalColor",
//	})
//	if err != nil {
//	    return err
//	}
//	if res.Failed() {
//	    for _, d := range res.Diagnostics {
//	        fmt.Println(d)
//	    }
//	}
//
// # Builds
//
// A build compiles every map document listed in a YAML build file, emits the
// artifacts as Go source, binary tables or JSON into a blob store (local
// directory, memory, S3 or MinIO) and commits a manifest:
//
//	cfg, _ := config.Load("relpack.yaml")
//	out, err := relpack.New(relpack.WithWorkers(8)).Build(ctx, cfg)
//
// Documents with diagnostics are reported through *ErrDocumentFailed and do
// not stop the remaining documents from being emitted.
package relpack
