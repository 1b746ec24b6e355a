// Package catalog exports extracted record sets to a SQLite database, one
// table per record set.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// IndexTable lists every exported record set.
const IndexTable = "record_sets"

// Export writes sets to a fresh SQLite database at path. Each row keeps its
// parent reference in parent_kind and parent_name columns.
func Export(ctx context.Context, path string, sets []models.RecordSet) (err error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove previous catalog: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE %s (table_name TEXT PRIMARY KEY, title TEXT NOT NULL, row_count INTEGER NOT NULL)`,
		quote(IndexTable))); err != nil {
		return fmt.Errorf("failed to create index table: %w", err)
	}

	used := map[string]int{IndexTable: 1}
	for _, rs := range sets {
		name := unique(Identifier(rs.Title), used)
		if err = exportSet(ctx, tx, name, rs); err != nil {
			return fmt.Errorf("export %s: %w", rs.Title, err)
		}
		if _, err = tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (table_name, title, row_count) VALUES (?, ?, ?)`, quote(IndexTable)),
			name, rs.Title, len(rs.Rows)); err != nil {
			return fmt.Errorf("index %s: %w", rs.Title, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

func exportSet(ctx context.Context, tx *sql.Tx, table string, rs models.RecordSet) error {
	columns := ColumnNames(rs.Headers)

	defs := make([]string, 0, len(columns)+2)
	defs = append(defs, "parent_kind TEXT", "parent_name TEXT")
	for _, c := range columns {
		defs = append(defs, quote(c)+" TEXT")
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("CREATE TABLE %s (%s)", quote(table), strings.Join(defs, ", "))); err != nil {
		return err
	}
	if len(rs.Rows) == 0 {
		return nil
	}

	names := []string{"parent_kind", "parent_name"}
	for _, c := range columns {
		names = append(names, quote(c))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table), strings.Join(names, ", "), placeholders))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(names))
	for _, row := range rs.Rows {
		args[0] = nullString(row.Parent.Kind)
		args[1] = nullString(row.Parent.Name)
		for i := range columns {
			var v string
			if i < len(row.Values) {
				v = row.Values[i]
			}
			args[i+2] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// ColumnNames converts headers to unique SQL column identifiers.
func ColumnNames(headers []string) []string {
	used := map[string]int{"parent_kind": 1, "parent_name": 1}
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = unique(Identifier(h), used)
	}
	return out
}

// Identifier lowercases s and replaces every run of non-alphanumeric
// characters with an underscore ("Table Name" -> "table_name").
func Identifier(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	id := strings.TrimSuffix(b.String(), "_")
	if id == "" {
		return "col"
	}
	if unicode.IsDigit(rune(id[0])) {
		return "c_" + id
	}
	return id
}

func unique(name string, used map[string]int) string {
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	candidate := name + "_" + strconv.Itoa(n+1)
	for used[candidate] > 0 {
		n++
		candidate = name + "_" + strconv.Itoa(n+1)
	}
	used[candidate] = 1
	return candidate
}

func quote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// nullString returns a sql.NullString for optional string fields.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
