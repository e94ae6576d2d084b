package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// Entry is one recorded compilation.
type Entry struct {
	Seq       int64  `json:"seq"`
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	SpecHash  string `json:"spec_hash"`
	SQLDigest string `json:"sql_digest"`
	SQL       string `json:"sql"`
}

// Record stores the compiled script of stmt.
// Returns the entry and whether a new record was inserted.
//
// Recording is idempotent on (name, spec hash): compiling an unchanged
// statement again returns the existing entry and inserted=false. A changed
// statement under the same name gets a new entry.
func (s *Store) Record(ctx context.Context, stmt viewspec.Statement, script string) (entry Entry, inserted bool, err error) {
	specHash, err := SpecHash(stmt)
	if err != nil {
		return Entry{}, false, fmt.Errorf("record: %w", err)
	}

	entry = Entry{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Kind:      viewspec.Kind(stmt),
		Name:      stmt.StatementName(),
		SpecHash:  specHash,
		SQLDigest: SQLDigest(script),
		SQL:       script,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, false, fmt.Errorf("record: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO compilations
		(id, kind, name, spec_hash, sql_digest, sql)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, spec_hash) DO NOTHING
	`,
		entry.ID,
		entry.Kind,
		entry.Name,
		entry.SpecHash,
		entry.SQLDigest,
		entry.SQL,
	)
	if err != nil {
		return Entry{}, false, fmt.Errorf("record: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return Entry{}, false, fmt.Errorf("record: rows affected: %w", err)
	}

	if rowsAffected > 0 {
		entry.Seq, err = result.LastInsertId()
		if err != nil {
			return Entry{}, false, fmt.Errorf("record: last insert id: %w", err)
		}
		inserted = true
	} else {
		row := tx.QueryRowContext(ctx, selectEntry+` WHERE name = ? AND spec_hash = ?`, entry.Name, entry.SpecHash)
		if entry, err = scanEntry(row); err != nil {
			return Entry{}, false, fmt.Errorf("record: select existing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, false, fmt.Errorf("record: commit: %w", err)
	}
	return entry, inserted, nil
}

// Entries returns all recorded compilations in seq order.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntry+` ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("entries: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entries: %w", err)
	}
	return entries, nil
}

// Latest returns the most recent entry recorded under name.
// Returns found=false if nothing was recorded under name.
func (s *Store) Latest(ctx context.Context, name string) (entry Entry, found bool, err error) {
	row := s.db.QueryRowContext(ctx, selectEntry+` WHERE name = ? ORDER BY seq DESC LIMIT 1`, name)
	entry, err = scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("latest: %w", err)
	}
	return entry, true, nil
}

const selectEntry = `SELECT seq, id, kind, name, spec_hash, sql_digest, sql FROM compilations`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	err := row.Scan(&e.Seq, &e.ID, &e.Kind, &e.Name, &e.SpecHash, &e.SQLDigest, &e.SQL)
	return e, err
}
