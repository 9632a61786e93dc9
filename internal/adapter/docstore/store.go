package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"bloodbank/internal/domain"
)

// Collections and their document paths:
//
//	branches/{id}
//	staff/{id}
//	donors/{nric}
//	donors/{nric}/donations/{id}
//	requests/{id}
//
// Donation documents sit under their donor and carry no NRIC or blood type;
// both come from the parent document.
const (
	colBranches  = "branches"
	colStaff     = "staff"
	colDonors    = "donors"
	colDonations = "donations"
	colRequests  = "requests"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    path TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    doc_id TEXT NOT NULL,
    parent TEXT,
    data TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection, doc_id);
CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents(parent, collection);

CREATE TABLE IF NOT EXISTS sequences (
    name TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);
`

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// openDatabase opens the SQLite file with a single writer connection, which
// serialises every unit of work in the process.
func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

func docPath(parts ...string) string {
	return strings.Join(parts, "/")
}

func donorPath(nric string) string { return docPath(colDonors, nric) }

func donationPath(nric string, id int64) string {
	return docPath(colDonors, nric, colDonations, strconv.FormatInt(id, 10))
}

func idPath(collection string, id int64) string {
	return docPath(collection, strconv.FormatInt(id, 10))
}

// nricFromParent extracts {nric} from "donors/{nric}".
func nricFromParent(parent string) string {
	return strings.TrimPrefix(parent, colDonors+"/")
}

func getDoc(ctx context.Context, q querier, path string, out any) error {
	var data string
	if err := q.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&data); err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), out)
}

func putDoc(ctx context.Context, q querier, path, collection, docID, parent string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var parentArg any
	if parent != "" {
		parentArg = parent
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO documents (path, collection, doc_id, parent, data) VALUES (?, ?, ?, ?, ?)`,
		path, collection, docID, parentArg, string(data))
	return err
}

func replaceDoc(ctx context.Context, q querier, path string, doc any) (int64, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `UPDATE documents SET data = ? WHERE path = ?`, string(data), path)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func upsertDoc(ctx context.Context, q querier, path, collection, docID string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO documents (path, collection, doc_id, parent, data) VALUES (?, ?, ?, NULL, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data
	`, path, collection, docID, string(data))
	return err
}

func docExists(ctx context.Context, q querier, path string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE path = ?`, path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// nextID hands out the next value of a per-collection sequence.
func nextID(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO sequences (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
		RETURNING value
	`, name).Scan(&id)
	return id, err
}

// storeErr translates SQLite failures into the domain taxonomy.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainErr(err) {
		return err
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicateKey)
		}
	}
	return &domain.StoreError{Op: op, Err: err}
}

func isDomainErr(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrDuplicateKey,
		domain.ErrAlreadyUsed,
		domain.ErrAlreadyFulfilled,
		domain.ErrValidation,
		domain.ErrBackingStore,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decodeJSON(data string, out any) error {
	return json.Unmarshal([]byte(data), out)
}

func encodeJSON(doc any) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
