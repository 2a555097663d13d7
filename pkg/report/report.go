package report

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const header = "Badge,Rarity,Set Price,Availability,Link"

// Row is one line of the final report.
type Row struct {
	Badge        string
	Rarity       string
	Price        string
	Availability int64
	Link         string
}

// Write emits the CSV report. Badge names are always quoted since game
// titles often contain commas; lines are CRLF-terminated.
func Write(w io.Writer, rows []Row) error {
	if _, err := fmt.Fprintf(w, "%s\r\n", header); err != nil {
		return err
	}
	for _, r := range rows {
		name := strings.ReplaceAll(r.Badge, `"`, `""`)
		if _, err := fmt.Fprintf(w, "\"%s\",%s,%s,%d,%s\r\n", name, r.Rarity, r.Price, r.Availability, r.Link); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the report to path.
func WriteFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
