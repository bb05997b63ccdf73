package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/torosent/lifebench/internal/runner"
)

// Columns is the persisted table header. Other tools depend on this exact
// set and order.
var Columns = []string{"variant", "mode", "blockrows", "steps", "mean_ms", "sd_ms", "exe"}

// WriteTable writes rows as CSV with the Columns header.
func WriteTable(w io.Writer, rows []runner.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Variant,
			row.Mode,
			row.BlockRows,
			strconv.Itoa(row.Steps),
			formatMs(row.MeanMs),
			formatMs(row.SdMs),
			row.Exe,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTableFile creates path and writes the table to it.
func WriteTableFile(path string, rows []runner.Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if err := WriteTable(file, rows); err != nil {
		file.Close()
		return fmt.Errorf("write table: %w", err)
	}
	return file.Close()
}

// ReadTable parses a table written by WriteTable. Columns are matched by
// header name so extra trailing columns are tolerated.
func ReadTable(r io.Reader) ([]runner.Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}
	for _, name := range Columns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("CSV header is missing column %q", name)
		}
	}

	rows := make([]runner.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		if len(record) != len(records[0]) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", line, len(record), len(records[0]))
		}
		steps, err := strconv.Atoi(record[index["steps"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid steps: %w", line, err)
		}
		mean, err := strconv.ParseFloat(record[index["mean_ms"]], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid mean_ms: %w", line, err)
		}
		sd, err := strconv.ParseFloat(record[index["sd_ms"]], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid sd_ms: %w", line, err)
		}
		rows = append(rows, runner.Row{
			Variant:   record[index["variant"]],
			Mode:      record[index["mode"]],
			BlockRows: record[index["blockrows"]],
			Steps:     steps,
			MeanMs:    mean,
			SdMs:      sd,
			Exe:       record[index["exe"]],
		})
	}
	return rows, nil
}

// ReadTableFile opens path and parses it with ReadTable.
func ReadTableFile(path string) ([]runner.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()
	return ReadTable(file)
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
