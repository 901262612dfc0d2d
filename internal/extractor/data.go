package extractor

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"
)

const (
	// maxTableRows caps how many CSV/TSV rows are rendered
	maxTableRows = 1000
)

// readJSON pretty-prints a JSON file so structure survives chunking.
// Invalid JSON falls back to plain text.
func (e *Extractor) readJSON(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return e.readTextFile(path)
	}

	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return e.readTextFile(path)
	}
	return string(pretty), nil
}

func (e *Extractor) readCSV(path string) (string, error) {
	return e.readDelimited(path, ',')
}

func (e *Extractor) readTSV(path string) (string, error) {
	return e.readDelimited(path, '\t')
}

// readDelimited renders tabular data as pipe-joined rows, capped at
// maxTableRows. Malformed rows fall back to plain text.
func (e *Extractor) readDelimited(path string, comma rune) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	var rows []string
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return e.readTextFile(path)
		}
		if i >= maxTableRows {
			rows = append(rows, "... (truncated)")
			break
		}
		rows = append(rows, strings.Join(record, " | "))
	}
	return strings.Join(rows, "\n"), nil
}
