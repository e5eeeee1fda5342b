package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

var bold = color.New(color.Bold)

func newTable(headers ...any) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = bold.Sprint(h)
	}
	tbl.AddRow(row...)
	return tbl
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit writes v as JSON under --json, otherwise the human rendering.
func (a *app) emit(w io.Writer, v any, human func() string) error {
	if a.opts.JSON {
		return writeJSON(w, v)
	}
	_, err := fmt.Fprintln(w, human())
	return err
}

func check(done bool) string {
	if done {
		return color.GreenString("✓")
	}
	return "·"
}
