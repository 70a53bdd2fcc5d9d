package auth

import (
	"context"
	"errors"
	"fmt"

	// PostgreSQL driver and utilities from the `jackc/pgx` suite.
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// DBTX is the subset of pgxpool.Pool the store uses, so pgxmock can stand in for it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresUserStore implements UserStore on a pgx pool.
type PostgresUserStore struct {
	db DBTX
}

// NewPostgresUserStore creates a PostgresUserStore.
func NewPostgresUserStore(db DBTX) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM usuarios WHERE username = $1 OR email = $2`,
		username, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, user *User, account *Account) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO usuarios (username, nombre, apellido, tipo_doc, cedula, nacimiento, telefono, email, clave)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		user.Username, user.FirstName, user.LastName, user.DocumentType, user.Identity,
		user.BirthDate, user.Phone, user.Email, user.PasswordHash).Scan(&id)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, mapPgInsertError("insert user", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO cuentas (usuario_id, saldo, numero_tarjeta) VALUES ($1, $2, $3)`,
		id, account.Balance, account.CardNumber)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, mapPgInsertError("insert account", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, mapPgInsertError("commit registration", err)
	}
	return id, nil
}

func mapPgInsertError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w (%s)", op, ErrDuplicateUser, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *PostgresUserStore) FindCredentials(ctx context.Context, username string) (*Credentials, error) {
	var c Credentials
	err := s.db.QueryRow(ctx,
		`SELECT id, clave FROM usuarios WHERE username = $1`,
		username).Scan(&c.UserID, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select credentials: %w", err)
	}
	return &c, nil
}

func (s *PostgresUserStore) LoadProfile(ctx context.Context, userID int64) (*Profile, error) {
	var first, last string
	p := Profile{UserID: userID}
	err := s.db.QueryRow(ctx, `
		SELECT u.nombre, u.apellido, COALESCE(c.saldo, 0)::float8, COALESCE(c.numero_tarjeta, '')
		FROM usuarios u
		LEFT JOIN cuentas c ON c.usuario_id = u.id
		WHERE u.id = $1`,
		userID).Scan(&first, &last, &p.Balance, &p.CardNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select profile: %w", err)
	}
	p.Name = fullName(first, last)
	return &p, nil
}
