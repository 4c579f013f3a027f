package emit

import (
	"bytes"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/hupe1980/relpack/artifact"
	"github.com/hupe1980/relpack/codec"
	"github.com/hupe1980/relpack/packed"
	"github.com/hupe1980/relpack/relation"
	"github.com/hupe1980/relpack/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, name, text string) (*relation.Relation, *packed.Artifact) {
	t.Helper()
	rel, diags := relation.Parse("map.csv", name, []byte(text))
	require.NoError(t, diags.Err())
	art := packed.Compile(rel)
	require.NotNil(t, art)
	return rel, art
}

const animalColors = "colors.Animal/colors.Color,Red,Green,Blue\nCat,,x,\nDog,x,,x\n"

// typeCheck parses and type-checks a generated file.
func typeCheck(t *testing.T, src []byte) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "gen.go", src, parser.ParseComments)
	require.NoError(t, err)
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg, err := conf.Check(f.Name.Name, fset, []*ast.File{f}, nil)
	require.NoError(t, err, string(src))
	return pkg
}

func TestNew(t *testing.T) {
	for _, format := range Formats() {
		e, err := New(format, Options{})
		require.NoError(t, err)
		assert.Equal(t, format, e.Name())
	}

	_, err := New("xml", Options{})
	var uf *ErrUnsupportedFormat
	require.ErrorAs(t, err, &uf)
	assert.Equal(t, `emit: unsupported format "xml"`, err.Error())
}

func TestGoSource(t *testing.T) {
	_, art := compile(t, "colors.AnimalColor", animalColors)

	g := &GoSource{}
	src, err := g.Generate(art)
	require.NoError(t, err)

	s := string(src)
	assert.Contains(t, s, "// Code generated by relpackc. DO NOT EDIT.")
	assert.Contains(t, s, "package colors\n")
	assert.Contains(t, s, "const animalColorRowCount = 2\n")
	assert.Contains(t, s, "var animalColorBits = [...]byte{\n\t0x26,\n\t0x00,\n\t0x00,\n}")
	assert.Contains(t, s, "func LookupAnimalColor(row int, column int) bool {")
	assert.Contains(t, s, "offset := int(row) + int(column)*animalColorRowCount")

	pkg := typeCheck(t, src)
	assert.Equal(t, "colors", pkg.Name())
	assert.NotNil(t, pkg.Scope().Lookup("LookupAnimalColor"))

	var buf bytes.Buffer
	require.NoError(t, g.Emit(&buf, art))
	assert.Equal(t, src, buf.Bytes())
	assert.Equal(t, "AnimalColor.go", FileName(art, g))
}

func TestGoSource_LineBreakPerColumn(t *testing.T) {
	doc := testutil.NewRNG(5).Document(20, 2, 0.5)
	_, art := compile(t, "x.Wide", string(doc.Text))
	require.Equal(t, 3, art.BytesPerColumn)

	src, err := (&GoSource{}).Generate(art)
	require.NoError(t, err)
	assert.Regexp(t, `\{\n\t0x[0-9A-F]{2}, 0x[0-9A-F]{2}, 0x[0-9A-F]{2},\n\t0x[0-9A-F]{2}, 0x[0-9A-F]{2}, 0x[0-9A-F]{2},\n\}`, string(src))
	typeCheck(t, src)
}

func TestGoSource_Ordinals(t *testing.T) {
	_, art := compile(t, "colors.AnimalColor", animalColors)

	src, err := (&GoSource{Ordinals: true}).Generate(art)
	require.NoError(t, err)

	s := string(src)
	assert.Contains(t, s, "type Animal int")
	assert.Contains(t, s, "type Color int")
	assert.Contains(t, s, "func LookupAnimalColor(row Animal, column Color) bool {")

	pkg := typeCheck(t, src)
	for name, want := range map[string]string{"AnimalCat": "0", "AnimalDog": "1", "ColorRed": "0", "ColorBlue": "2"} {
		obj, ok := pkg.Scope().Lookup(name).(*types.Const)
		require.True(t, ok, name)
		assert.Equal(t, want, obj.Val().String(), name)
	}
}

func TestGoSource_OrdinalNamesSanitized(t *testing.T) {
	text := "Kind/Kind2,a b,a-b,1st,type\nfunc,x,,,\n_,,x,,\nfunc,,,x,x\n"
	_, art := compile(t, "pkg.Odd", text)

	src, err := (&GoSource{Ordinals: true}).Generate(art)
	require.NoError(t, err)

	pkg := typeCheck(t, src)
	for _, name := range []string{"Kind2A_b", "Kind2A_b2", "Kind2M21st", "Kind2Type", "KindFunc", "KindM1", "KindFunc2"} {
		assert.NotNil(t, pkg.Scope().Lookup(name), name)
	}
}

func TestGoSource_OrdinalNamesDoNotCollide(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{
			name: "suffixed duplicate meets existing member",
			text: "R/C,A2,A,A\nX,x,,x\n",
			want: map[string]string{"CA2": "0", "CA": "1", "CA3": "2"},
		},
		{
			name: "row constant meets column constant",
			text: "A/AB,Foo\nBFoo,x\n",
			want: map[string]string{"ABFoo": "0", "ABFoo2": "0"},
		},
		{
			name: "constant meets other domain type",
			text: "A/AB,x\nB,x\n",
			want: map[string]string{"AB2": "0", "ABX": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, art := compile(t, "pkg.Clash", tt.text)

			src, err := (&GoSource{Ordinals: true}).Generate(art)
			require.NoError(t, err)

			pkg := typeCheck(t, src)
			for name, want := range tt.want {
				obj, ok := pkg.Scope().Lookup(name).(*types.Const)
				require.True(t, ok, name)
				assert.Equal(t, want, obj.Val().String(), name)
			}
		})
	}
}

func TestGoSource_ReservedNamesClash(t *testing.T) {
	_, art := compile(t, "pkg.X", "LookupX/C,A\nR,x\n")

	_, err := (&GoSource{Ordinals: true}).Generate(art)
	require.Error(t, err)
}

func TestGoSource_SameDomainTypes(t *testing.T) {
	_, art := compile(t, "graph.Edges", "Node/Node,A,B\nA,,x\nB,x,\n")

	_, err := (&GoSource{Ordinals: true}).Generate(art)
	require.Error(t, err)

	src, err := (&GoSource{Ordinals: true, ColumnType: "Target"}).Generate(art)
	require.NoError(t, err)
	typeCheck(t, src)
}

func TestGoSource_ExternalTypes(t *testing.T) {
	_, art := compile(t, "colors.AnimalColor", animalColors)

	src, err := (&GoSource{
		Package:    "lookup",
		Imports:    []string{"time", "time"},
		RowType:    "time.Month",
		ColumnType: "time.Weekday",
	}).Generate(art)
	require.NoError(t, err)

	s := string(src)
	assert.Contains(t, s, "package lookup\n")
	assert.Contains(t, s, "import (\n\t\"time\"\n)")
	assert.Contains(t, s, "func LookupAnimalColor(row time.Month, column time.Weekday) bool {")
	typeCheck(t, src)

	_, err = (&GoSource{Ordinals: true, RowType: "time.Month"}).Generate(art)
	assert.Error(t, err)
}

func TestGoSource_Empty(t *testing.T) {
	rel, diags := relation.Parse("map.csv", "x.Empty", []byte("A/B,C1,C2\n"))
	require.NoError(t, diags.Err())
	art := packed.Compile(rel)
	require.NotNil(t, art)

	src, err := (&GoSource{}).Generate(art)
	require.NoError(t, err)
	assert.Contains(t, string(src), "var emptyBits = [...]byte{}")
	typeCheck(t, src)
}

func TestGoSource_InvalidName(t *testing.T) {
	_, art := compile(t, "pkg.9lives", animalColors)
	_, err := (&GoSource{}).Generate(art)
	assert.Error(t, err)
}

func TestPackageName(t *testing.T) {
	for in, want := range map[string]string{
		"colors":                   "colors",
		"Microsoft.Data.SqlClient": "sqlclient",
		"my_pkg":                   "mypkg",
		"":                         "relations",
		"1abc":                     "relations",
		"a.func":                   "relations",
	} {
		assert.Equal(t, want, packageName(in), in)
	}
}

func TestBinary(t *testing.T) {
	rel, art := compile(t, "colors.AnimalColor", animalColors)

	for _, c := range []artifact.Compression{artifact.CompressionNone, artifact.CompressionZSTD} {
		e, err := New("binary", Options{Compression: c})
		require.NoError(t, err)
		assert.Equal(t, ".rpk", e.Ext())

		var buf bytes.Buffer
		require.NoError(t, e.Emit(&buf, art))

		got, err := artifact.Unmarshal(buf.Bytes())
		require.NoError(t, err)
		require.NoError(t, packed.Verify(rel, got))
	}
}

func TestJSON(t *testing.T) {
	rel, art := compile(t, "colors.AnimalColor", animalColors)

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			e := &JSON{Codec: c, Indent: true}

			var buf bytes.Buffer
			require.NoError(t, e.Emit(&buf, art))
			assert.Contains(t, buf.String(), `"simple_name": "AnimalColor"`)
			assert.Contains(t, buf.String(), `"bits": "JgAA"`)

			got, err := DecodeJSON(buf.Bytes(), c)
			require.NoError(t, err)
			assert.Equal(t, art, got)
			require.NoError(t, packed.Verify(rel, got))
		})
	}
}

func TestDecodeJSON_Inconsistent(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"row_count":9,"row_members":["a"]}`), nil)
	assert.ErrorIs(t, err, errDocumentShape)

	_, err = DecodeJSON([]byte(`{`), nil)
	assert.Error(t, err)
}
