package commands

import (
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func prob(p float64) string {
	return strconv.FormatFloat(p, 'f', 4, 64)
}

func header(lead string, cols []string) string {
	return lead + "\t" + strings.Join(cols, "\t")
}

func row(lead string, values []float64) string {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = prob(v)
	}
	return lead + "\t" + strings.Join(cells, "\t")
}
