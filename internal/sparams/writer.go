package sparams

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/RMahshie/sparamgen/pkg/models"
)

const (
	timeLayout = "2006-01-02 15:04:05"
	optionLine = "# Mhz S DB R 50"
	legendLine = "! Freq\t|S11|\t<S11\t|S21|\t<S21\t|S12|\t<S12\t|S22|\t<S22"
)

// WriteTable writes the table as a Touchstone-style text file
func WriteTable(w io.Writer, table *models.SParameterTable) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "! Date & Time: %s\n", table.GeneratedAt.Format(timeLayout))
	fmt.Fprintf(bw, "! Filter name: %s\n", table.FilterName)
	fmt.Fprintln(bw, optionLine)
	fmt.Fprintln(bw, legendLine)
	for _, row := range table.Rows {
		fmt.Fprintln(bw, strings.Join(row.Fields(), "\t"))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write s-parameter table: %w", err)
	}
	return nil
}

// FileName returns the conventional file name of a table
func FileName(table *models.SParameterTable) string {
	name := strings.TrimSpace(table.FilterName)
	if name == "" {
		name = "filter"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, name)
	return name + ".s2p"
}
