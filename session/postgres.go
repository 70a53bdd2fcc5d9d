package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool the store needs. pgxmock satisfies it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the `sesiones` table so they survive
// restarts and are shared between instances.
type PostgresStore struct {
	db  DBTX
	now func() time.Time
}

// NewPostgresStore creates a PostgresStore. A nil clock defaults to time.Now.
func NewPostgresStore(db DBTX, now func() time.Time) *PostgresStore {
	if now == nil {
		now = time.Now
	}
	return &PostgresStore{db: db, now: now}
}

func (p *PostgresStore) Create(ctx context.Context, s *Session) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO sesiones (id, usuario_id, nombre, saldo, tarjeta, creado_en, expira_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.Name, s.Balance, s.CardNumber, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var s Session
	err := p.db.QueryRow(ctx, `
		SELECT id, usuario_id, nombre, saldo, tarjeta, creado_en, expira_en
		FROM sesiones
		WHERE id = $1 AND expira_en > $2`,
		id, p.now()).Scan(&s.ID, &s.UserID, &s.Name, &s.Balance, &s.CardNumber, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &s, nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := p.db.Exec(ctx, `DELETE FROM sesiones WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (p *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM sesiones WHERE expira_en <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
