package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"trilha/internal/registration/models"
	"trilha/pkg/sentinel"
)

// Names of the unique indexes created by the migrations. A 23505 from either
// one is translated into the matching duplicate sentinel.
const (
	emailUniqueIndex    = "inscritos_email_idx"
	whatsappUniqueIndex = "inscritos_whatsapp_idx"
)

// Advisory lock key serializing capacity-guarded inserts. Under READ
// COMMITTED, two overlapping inserts would each count only the rows in their
// own statement snapshot and both pass the ceiling check; the transaction
// lock makes the count and the insert atomic. Released at commit/rollback.
const capacityLockKey = 7451219

// PostgresStore persists registrations in PostgreSQL.
type PostgresStore struct {
	db       *sql.DB
	capacity int
}

// NewPostgres constructs a PostgreSQL-backed registration store. The capacity
// ceiling is enforced inside Create's conditional insert.
func NewPostgres(db *sql.DB, capacity int) *PostgresStore {
	return &PostgresStore{db: db, capacity: capacity}
}

// Create inserts a registration only while the table holds fewer rows than
// the capacity ceiling. The advisory lock serializes the count-and-insert so
// concurrent submissions cannot overfill the table, and the unique indexes
// close the duplicate race at any isolation level.
func (s *PostgresStore) Create(ctx context.Context, reg *models.Registration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, capacityLockKey); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}

	query := `
		INSERT INTO inscritos (nome, whatsapp, email, emergencia_nome, emergencia_tel, termo_imagem)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE (SELECT COUNT(*) FROM inscritos) < $7
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, query,
		reg.Nome,
		reg.Whatsapp,
		reg.Email,
		reg.EmergenciaNome,
		reg.EmergenciaTel,
		reg.TermoImagem,
		s.capacity,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrCapacityReached
		}
		if dup := duplicateSentinel(err); dup != nil {
			return dup
		}
		return fmt.Errorf("create registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindConflict returns any existing record holding the candidate's email or
// whatsapp, skipping excludeID when editing. At most one row is expected
// because both columns carry unique indexes.
func (s *PostgresStore) FindConflict(ctx context.Context, email, whatsapp string, excludeID int64) (*models.Registration, error) {
	query := `
		SELECT id, created_at, nome, whatsapp, email, emergencia_nome, emergencia_tel, termo_imagem
		FROM inscritos
		WHERE (email = $1 OR whatsapp = $2) AND id <> $3
		LIMIT 1
	`
	rec, err := scanRegistration(s.db.QueryRowContext(ctx, query, email, whatsapp, excludeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find conflict: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Registration, error) {
	query := `
		SELECT id, created_at, nome, whatsapp, email, emergencia_nome, emergencia_tel, termo_imagem
		FROM inscritos
		WHERE id = $1
	`
	rec, err := scanRegistration(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Registration, error) {
	query := `
		SELECT id, created_at, nome, whatsapp, email, emergencia_nome, emergencia_tel, termo_imagem
		FROM inscritos
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.Registration
	for rows.Next() {
		rec, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, reg *models.Registration) error {
	query := `
		UPDATE inscritos
		SET nome = $2, whatsapp = $3, email = $4, emergencia_nome = $5, emergencia_tel = $6, termo_imagem = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		reg.ID,
		reg.Nome,
		reg.Whatsapp,
		reg.Email,
		reg.EmergenciaNome,
		reg.EmergenciaTel,
		reg.TermoImagem,
	)
	if err != nil {
		if dup := duplicateSentinel(err); dup != nil {
			return dup
		}
		return fmt.Errorf("update registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inscritos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Count returns the total row count without row bodies.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inscritos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var rec models.Registration
	err := row.Scan(
		&rec.ID,
		&rec.CreatedAt,
		&rec.Nome,
		&rec.Whatsapp,
		&rec.Email,
		&rec.EmergenciaNome,
		&rec.EmergenciaTel,
		&rec.TermoImagem,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func duplicateSentinel(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return nil
	}
	switch pqErr.Constraint {
	case emailUniqueIndex:
		return sentinel.ErrDuplicateEmail
	case whatsappUniqueIndex:
		return sentinel.ErrDuplicatePhone
	default:
		return sentinel.ErrDuplicateEmail
	}
}
