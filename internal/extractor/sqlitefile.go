package extractor

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sechaba/ragwatch/internal/tracker"
)

const (
	// maxSampleRows is how many rows per table the rendering includes
	maxSampleRows = 10
)

// readSQLite renders a SQLite database as readable text: table names,
// columns, row counts and a few sample rows per table. Uses the same driver
// the tracker is built with.
func (e *Extractor) readSQLite(path string) (string, error) {
	db, err := sql.Open(tracker.DriverName, path)
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	tables, err := listTables(db)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SQLite Database: %s\n", path)
	fmt.Fprintf(&b, "Tables: %d\n", len(tables))

	for _, table := range tables {
		if err := renderTable(db, &b, table); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func listTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func renderTable(db *sql.DB, b *strings.Builder, table string) error {
	// Table names come from sqlite_master, not user input, but quote anyway
	quoted := `"` + strings.ReplaceAll(table, `"`, `""`) + `"`

	var rowCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + quoted).Scan(&rowCount); err != nil {
		return err
	}

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoted, maxSampleRows))
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	fmt.Fprintf(b, "\n=== %s ===\n", table)
	fmt.Fprintf(b, "Columns: %s\n", strings.Join(cols, ", "))
	fmt.Fprintf(b, "Rows: %d\n", rowCount)

	if rowCount == 0 {
		return nil
	}

	b.WriteString("Sample data:\n")
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		cells := make([]string, len(values))
		for i, v := range values {
			switch val := v.(type) {
			case nil:
				cells[i] = ""
			case []byte:
				cells[i] = string(val)
			default:
				cells[i] = fmt.Sprintf("%v", val)
			}
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
	}
	return rows.Err()
}
