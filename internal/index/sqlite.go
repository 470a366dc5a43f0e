package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteBuilder tokenizes sentences with SQLite FTS5 and exports the
// vocabulary as the JSON index
type SQLiteBuilder struct{}

var sqliteSchema = []string{
	`CREATE VIRTUAL TABLE sentences USING fts5(name, line, tokenize = 'unicode61 remove_diacritics 2')`,
	`CREATE VIRTUAL TABLE vocab USING fts5vocab(sentences, 'instance')`,
}

// Build implements Builder
func (SQLiteBuilder) Build(ctx context.Context, input, output string) error {
	page, err := ReadPage(input)
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create fts tables: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	insert, err := tx.PrepareContext(ctx, `INSERT INTO sentences(rowid, name, line) VALUES (?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	for _, s := range page.Sentences {
		if _, err := insert.ExecContext(ctx, s.ID, s.Name, s.Line); err != nil {
			_ = insert.Close()
			_ = tx.Rollback()
			return fmt.Errorf("insert sentence %d: %w", s.ID, err)
		}
	}
	_ = insert.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT term, doc, col FROM vocab ORDER BY term, doc`)
	if err != nil {
		return fmt.Errorf("query vocabulary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	idx := newIndex(page)
	for rows.Next() {
		var term, col string
		var doc int
		if err := rows.Scan(&term, &doc, &col); err != nil {
			return fmt.Errorf("scan vocabulary: %w", err)
		}
		idx.add(term, col, doc)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read vocabulary: %w", err)
	}
	return writeIndex(output, idx)
}
