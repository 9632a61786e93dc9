package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bloodbank/internal/domain"
)

// Repository implements domain.Repository over nested JSON documents.
type Repository struct {
	db     *sql.DB
	q      querier
	tx     *sql.Tx
	logger zerolog.Logger
}

// Open opens (or creates) a document store at path. ":memory:" gives a
// private in-process store.
func Open(path string, logger zerolog.Logger) (*Repository, error) {
	db, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("open docstore: %w", err)
	}
	return &Repository{db: db, q: db, logger: logger}, nil
}

// Close closes the database handle.
func (r *Repository) Close() error {
	if r.tx != nil {
		return nil
	}
	return r.db.Close()
}

// Do runs fn in one SQLite transaction. A nested Do joins the outer one.
func (r *Repository) Do(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.inTx(ctx, func(tx *Repository) error {
		return fn(tx)
	})
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin tx", err)
	}
	txRepo := &Repository{db: r.db, q: tx, tx: tx, logger: r.logger}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.Error().Err(rbErr).Msg("docstore rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit tx", err)
	}
	return nil
}

// Donor documents.

func (r *Repository) GetAllDonors(ctx context.Context) ([]domain.Donor, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT data FROM documents WHERE collection = ? ORDER BY doc_id`, colDonors)
	if err != nil {
		return nil, storeErr("list donors", err)
	}
	defer rows.Close()

	var items []domain.Donor
	for rows.Next() {
		var doc donorDoc
		if err := scanJSON(rows, &doc); err != nil {
			return nil, storeErr("scan donor", err)
		}
		items = append(items, doc.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list donors", err)
	}
	return items, nil
}

func (r *Repository) GetDonorByNRIC(ctx context.Context, nric string) (*domain.Donor, error) {
	var doc donorDoc
	if err := getDoc(ctx, r.q, donorPath(nric), &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("donor", nric)
		}
		return nil, storeErr("get donor", err)
	}
	donor := doc.toDomain()
	return &donor, nil
}

func (r *Repository) InsertDonor(ctx context.Context, donor *domain.Donor) error {
	donor.Normalize()
	if donor.RegistrationDate.IsZero() {
		donor.RegistrationDate = time.Now().UTC().Truncate(time.Microsecond)
	}
	path := donorPath(donor.NRIC)
	return r.inTx(ctx, func(tx *Repository) error {
		exists, err := docExists(ctx, tx.q, path)
		if err != nil {
			return storeErr("insert donor", err)
		}
		if exists {
			return fmt.Errorf("donor %s: %w", donor.NRIC, domain.ErrDuplicateKey)
		}
		if err := putDoc(ctx, tx.q, path, colDonors, donor.NRIC, "", donorDocFrom(donor)); err != nil {
			return storeErr("insert donor", err)
		}
		return nil
	})
}

// UpdateDonor rewrites mutable fields; NRIC and registration date are kept.
func (r *Repository) UpdateDonor(ctx context.Context, donor *domain.Donor) error {
	donor.Normalize()
	return r.inTx(ctx, func(tx *Repository) error {
		current, err := tx.GetDonorByNRIC(ctx, donor.NRIC)
		if err != nil {
			return err
		}
		doc := donorDocFrom(donor)
		doc.RegistrationDate = current.RegistrationDate
		if _, err := replaceDoc(ctx, tx.q, donorPath(donor.NRIC), doc); err != nil {
			return storeErr("update donor", err)
		}
		return nil
	})
}

func (r *Repository) DeleteDonorByNRIC(ctx context.Context, nric string) error {
	return r.inTx(ctx, func(tx *Repository) error {
		path := donorPath(nric)
		exists, err := docExists(ctx, tx.q, path)
		if err != nil {
			return storeErr("delete donor", err)
		}
		if !exists {
			return domain.NotFound("donor", nric)
		}
		var children int64
		if err := tx.q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE parent = ? AND collection = ?`, path, colDonations,
		).Scan(&children); err != nil {
			return storeErr("delete donor", err)
		}
		if children > 0 {
			return domain.Invalid("nric", "donor has recorded donations")
		}
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
			return storeErr("delete donor", err)
		}
		return nil
	})
}

// Reference documents.

func (r *Repository) GetAllBranches(ctx context.Context) ([]domain.Branch, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT data FROM documents WHERE collection = ? ORDER BY CAST(doc_id AS INTEGER)`, colBranches)
	if err != nil {
		return nil, storeErr("list branches", err)
	}
	defer rows.Close()

	var items []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := scanJSON(rows, &b); err != nil {
			return nil, storeErr("scan branch", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list branches", err)
	}
	return items, nil
}

func (r *Repository) GetBranchByID(ctx context.Context, id int64) (*domain.Branch, error) {
	var b domain.Branch
	if err := getDoc(ctx, r.q, idPath(colBranches, id), &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("branch", id)
		}
		return nil, storeErr("get branch", err)
	}
	return &b, nil
}

func (r *Repository) GetStaffByID(ctx context.Context, id int64) (*domain.Staff, error) {
	var s domain.Staff
	if err := getDoc(ctx, r.q, idPath(colStaff, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("staff", id)
		}
		return nil, storeErr("get staff", err)
	}
	return &s, nil
}

// GetBloodTypeID has no lookup collection to consult; ids follow the
// canonical order, the same values the relational lookup table is seeded with.
func (r *Repository) GetBloodTypeID(_ context.Context, bloodType domain.BloodType) (int, error) {
	id := bloodType.ID()
	if id == 0 {
		return 0, domain.NotFound("blood type", bloodType)
	}
	return id, nil
}

func (r *Repository) UpsertBranches(ctx context.Context, branches []domain.Branch) error {
	return r.inTx(ctx, func(tx *Repository) error {
		for _, b := range branches {
			if err := upsertDoc(ctx, tx.q, idPath(colBranches, b.ID), colBranches, fmt.Sprint(b.ID), b); err != nil {
				return storeErr("upsert branch", err)
			}
		}
		return nil
	})
}

func (r *Repository) UpsertStaff(ctx context.Context, staff []domain.Staff) error {
	return r.inTx(ctx, func(tx *Repository) error {
		for _, s := range staff {
			if err := upsertDoc(ctx, tx.q, idPath(colStaff, s.ID), colStaff, fmt.Sprint(s.ID), s); err != nil {
				return storeErr("upsert staff", err)
			}
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJSON(row scanner, out any) error {
	var data string
	if err := row.Scan(&data); err != nil {
		return err
	}
	return decodeJSON(data, out)
}

var (
	_ domain.Repository      = (*Repository)(nil)
	_ domain.ReferenceLoader = (*Repository)(nil)
)
