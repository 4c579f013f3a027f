package relpack_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/relpack"
	"github.com/hupe1980/relpack/blobstore"
	"github.com/hupe1980/relpack/config"
)

// Example_compile demonstrates compiling one document and querying the table.
func Example_compile() {
	c := relpack.New(relpack.WithVerify(true))

	res, err := c.Compile(context.Background(), relpack.Source{
		Path: "AnimalColor.csv",
		Name: "colors.AnimalColor",
		Text: []byte("Animal/Color,Red,Green,Blue\nCat,,x,\nDog,x,,x\n"),
	})
	if err != nil {
		log.Fatal(err)
	}

	art := res.Artifact
	fmt.Println(art.RowCount, art.ColumnCount, len(art.Bits))
	fmt.Println(art.Lookup(0, 1), art.Lookup(0, 2))

	ok, _ := art.Resolver().Lookup("Dog", "Blue")
	fmt.Println(ok)
	// Output:
	// 2 3 3
	// true false
	// true
}

// Example_diagnostics demonstrates how document problems are reported.
func Example_diagnostics() {
	res, err := relpack.New().Compile(context.Background(), relpack.Source{
		Path: "Broken.csv",
		Name: "colors.Broken",
		Text: []byte("Animal/Color,Red\nCat\nDog,x\n"),
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, d := range res.Diagnostics {
		fmt.Println(d)
	}
	// Output: Broken.csv:1:0-2: RPK003 error: invalid csv row
}

// Example_build demonstrates a build into an in-memory store.
func Example_build() {
	dir, err := os.MkdirTemp("", "relpack-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	doc := filepath.Join(dir, "AnimalColor.csv")
	if err := os.WriteFile(doc, []byte("Animal/Color,Red,Green,Blue\nCat,,x,\nDog,x,,x\n"), 0o644); err != nil {
		log.Fatal(err)
	}

	cfg := config.Default()
	cfg.Files = []config.File{{Path: doc, FileType: "Map", FileFormat: "Csv", TypeName: "colors.AnimalColor"}}
	cfg.Output.Format = "binary"

	out, err := relpack.New(relpack.WithStore(blobstore.NewMemoryStore())).Build(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	for _, e := range out.Manifest.Entries {
		fmt.Println(e.Name, e.Blob, e.Rows, e.Columns, e.Cells)
	}
	// Output: colors.AnimalColor AnimalColor.rpk 2 3 3
}
