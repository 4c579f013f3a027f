package relation

import (
	"bufio"
	"bytes"
	"strings"
)

const (
	fieldSeparator   = ","
	domainSeparators = "/\\"
)

// Parse reads one relation document.
//
// path is only used to locate diagnostics; name becomes Relation.Name.
// The returned relation is nil only when the header is missing or empty.
// Data lines with a wrong field count are reported and skipped, but still
// consume a row index so that the indices of later rows match their line.
func Parse(path, name string, text []byte) (*Relation, Diagnostics) {
	sc := newLineScanner(text)

	if !sc.Scan() || len(sc.Bytes()) == 0 {
		return nil, Diagnostics{newDiagnostic(InvalidHeader, path, 0, "")}
	}

	header := strings.Split(sc.Text(), fieldSeparator)
	rowDomain, columnDomain := splitDomains(header[0])
	rel := New(name, rowDomain, columnDomain, header[1:])
	if !rel.Usable() {
		return rel, nil
	}

	var diags Diagnostics
	line, row := 1, 0
	for sc.Scan() {
		text := sc.Text()
		fields := strings.Split(text, fieldSeparator)
		if len(fields) != rel.ColumnCount()+1 {
			diags = append(diags, newDiagnostic(InvalidRowLength, path, line, text))
		} else {
			rel.AddRow(fields[0])
			for k, cell := range fields[1:] {
				if cell != "" {
					rel.Set(row, k)
				}
			}
		}
		line++
		row++
	}
	return rel, diags
}

// splitDomains returns both sides of a field holding exactly one separator.
// Any other field yields two empty names.
func splitDomains(field string) (string, string) {
	i := strings.IndexAny(field, domainSeparators)
	if i < 0 || strings.ContainsAny(field[i+1:], domainSeparators) {
		return "", ""
	}
	return field[:i], field[i+1:]
}

// newLineScanner splits on "\n", "\r\n" and "\r". A terminator at the end of
// the input does not produce a trailing empty line.
func newLineScanner(text []byte) *bufio.Scanner {
	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 4096), len(text)+1)
	sc.Split(scanLines)
	return sc
}

func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// '\r' may be followed by '\n' in the next read.
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
