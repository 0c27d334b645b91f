package rtdb

import (
	"fmt"
	"io"
)

// PrintResult writes r to w. Documents are written as their serialized JSON
// on a single line; everything else as three lines: path, type and value.
func PrintResult(w io.Writer, r *Result) {
	if r.DataType() == TypeJSON {
		fmt.Fprintln(w, r.JSONString())
		return
	}
	fmt.Fprintf(w, "Path: %s\n", r.DataPath())
	fmt.Fprintf(w, "Type: %s\n", r.DataType())
	fmt.Fprintf(w, "Value: %s\n", r.StringData())
}
