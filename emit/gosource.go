package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/relpack/packed"
)

// GoSource emits a Go file with the packed table and an inlined Lookup.
//
// For an artifact named "colors.AnimalColor" it declares, in package colors:
//
//	const animalColorRowCount = ...
//	var animalColorBits = [...]byte{...}
//	func LookupAnimalColor(row, column int) bool
type GoSource struct {
	// Package overrides the package name derived from the namespace.
	Package string
	// Imports are added to the import block, e.g. the packages that declare
	// RowType and ColumnType.
	Imports []string
	// RowType and ColumnType are the parameter types of Lookup. Both must
	// have an integer underlying type. They default to int, or to the domain
	// names when Ordinals is set.
	RowType    string
	ColumnType string
	// Ordinals declares RowType and ColumnType with one constant per member.
	Ordinals bool
}

func (*GoSource) Name() string { return "go" }

func (*GoSource) Ext() string { return ".go" }

// Emit writes the formatted file to w.
func (g *GoSource) Emit(w io.Writer, art *packed.Artifact) error {
	src, err := g.Generate(art)
	if err != nil {
		return err
	}
	_, err = w.Write(src)
	return err
}

// Generate returns the formatted file.
func (g *GoSource) Generate(art *packed.Artifact) ([]byte, error) {
	simple := exportIdent(art.SimpleName())
	if simple == "" || !unicode.IsLetter(firstRune(simple)) {
		return nil, fmt.Errorf("emit: %q has no usable Go identifier", art.Name)
	}
	pkg := g.Package
	if pkg == "" {
		pkg = packageName(art.Namespace())
	}

	rowType, columnType := g.RowType, g.ColumnType
	if g.Ordinals {
		if rowType == "" {
			rowType = domainType(art.RowDomain, "Row")
		}
		if columnType == "" {
			columnType = domainType(art.ColumnDomain, "Column")
		}
		if rowType == columnType {
			return nil, fmt.Errorf("emit: row and column domains of %q both map to Go type %s", art.Name, rowType)
		}
		for _, t := range []string{rowType, columnType} {
			if !goIdentRe.MatchString(t) {
				return nil, fmt.Errorf("emit: cannot declare ordinals for qualified type %s", t)
			}
		}
	}
	if rowType == "" {
		rowType = "int"
	}
	if columnType == "" {
		columnType = "int"
	}

	unexported := unexportIdent(simple)
	rowCountName := unexported + "RowCount"
	bitsName := unexported + "Bits"
	lookupName := "Lookup" + simple

	// Every package-level identifier of the file shares one namespace.
	names := make(declared)
	fixed := []string{rowCountName, bitsName, lookupName}
	if g.Ordinals {
		fixed = append(fixed, rowType, columnType)
	}
	for _, name := range fixed {
		if !names.reserve(name) {
			return nil, fmt.Errorf("emit: %q declares %s twice", art.Name, name)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("// Code generated by relpackc. DO NOT EDIT.\n")
	fmt.Fprintf(&buf, "// Relation: %s (%s/%s)\n\n", art.Name, art.RowDomain, art.ColumnDomain)
	fmt.Fprintf(&buf, "package %s\n\n", pkg)

	if imports := sortedUnique(g.Imports); len(imports) > 0 {
		buf.WriteString("import (\n")
		for _, imp := range imports {
			fmt.Fprintf(&buf, "\t%s\n", strconv.Quote(imp))
		}
		buf.WriteString(")\n\n")
	}

	if g.Ordinals {
		writeOrdinals(&buf, names, rowType, art.RowMembers, "row", simple)
		writeOrdinals(&buf, names, columnType, art.ColumnMembers, "column", simple)
	}

	fmt.Fprintf(&buf, "const %s = %d\n\n", rowCountName, art.RowCount)

	fmt.Fprintf(&buf, "var %s = [...]byte{", bitsName)
	for i, b := range art.Bits {
		if i%art.BytesPerColumn == 0 {
			buf.WriteString("\n\t")
		} else {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "0x%02X,", b)
	}
	if len(art.Bits) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n\n")

	fmt.Fprintf(&buf, "// %s reports whether row is related to column.\n", lookupName)
	fmt.Fprintf(&buf, "func %s(row %s, column %s) bool {\n", lookupName, rowType, columnType)
	fmt.Fprintf(&buf, "\toffset := int(row) + int(column)*%s\n", rowCountName)
	buf.WriteString("\tbyteIndex := int(uint(offset) / 8)\n")
	buf.WriteString("\tbitIndex := offset & (8 - 1)\n")
	fmt.Fprintf(&buf, "\treturn %s[byteIndex]&(1<<bitIndex) != 0\n", bitsName)
	buf.WriteString("}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("emit: format %s: %w", art.Name, err)
	}
	return src, nil
}

func writeOrdinals(buf *bytes.Buffer, names declared, typeName string, members []string, axis, relation string) {
	fmt.Fprintf(buf, "// %s enumerates the %s members of %s.\n", typeName, axis, relation)
	fmt.Fprintf(buf, "type %s int\n\n", typeName)
	if len(members) == 0 {
		return
	}

	buf.WriteString("const (\n")
	for i, m := range members {
		name := exportIdent(m)
		if name == "" || !unicode.IsLetter(firstRune(name)) {
			name = fmt.Sprintf("M%d%s", i, name)
		}
		name = names.declare(typeName + name)

		fmt.Fprintf(buf, "\t%s %s = %d // %s\n", name, typeName, i, strconv.Quote(m))
	}
	buf.WriteString(")\n\n")
}

// declared tracks the package-level identifiers of a generated file.
type declared map[string]struct{}

// reserve claims name and reports whether it was still free.
func (d declared) reserve(name string) bool {
	if _, ok := d[name]; ok {
		return false
	}
	d[name] = struct{}{}
	return true
}

// declare claims name, appending the first free numeric suffix from 2 on
// when it is taken.
func (d declared) declare(name string) string {
	if d.reserve(name) {
		return name
	}
	for n := 2; ; n++ {
		if candidate := name + strconv.Itoa(n); d.reserve(candidate) {
			return candidate
		}
	}
}

var goIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// sanitizeGoIdent maps name onto the Go identifier alphabet. It returns ""
// when nothing usable is left.
func sanitizeGoIdent(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	name = strings.Trim(name, "_")
	if name == "" {
		return ""
	}
	if isGoKeyword(name) {
		return "_" + name
	}
	return name
}

func isGoKeyword(s string) bool {
	switch s {
	case "break", "case", "chan", "const", "continue", "default", "defer", "else", "fallthrough", "for", "func", "go", "goto", "if", "import", "interface", "map", "package", "range", "return", "select", "struct", "switch", "type", "var":
		return true
	default:
		return false
	}
}

func exportIdent(name string) string {
	name = sanitizeGoIdent(name)
	name = strings.TrimLeft(name, "_")
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

func unexportIdent(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// packageName derives a package name from the last segment of a namespace.
func packageName(namespace string) string {
	if i := strings.LastIndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	name := strings.ToLower(sanitizeGoIdent(namespace))
	name = strings.ReplaceAll(name, "_", "")
	if name == "" || !unicode.IsLetter(firstRune(name)) || isGoKeyword(name) {
		return "relations"
	}
	return name
}

// domainType derives a type name from a domain such as "colors.Animal".
func domainType(domain, fallback string) string {
	if i := strings.LastIndexByte(domain, '.'); i >= 0 && i < len(domain)-1 {
		domain = domain[i+1:]
	}
	name := exportIdent(domain)
	if name == "" || !unicode.IsLetter(firstRune(name)) {
		return fallback
	}
	return name
}

func sortedUnique(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return slices.Compact(out)
}
