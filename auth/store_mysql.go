package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// mysqlDuplicateEntry is MySQL's ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// MySQLUserStore implements UserStore on sqlx over go-sql-driver/mysql.
type MySQLUserStore struct {
	db *sqlx.DB
}

// NewMySQLUserStore creates a MySQLUserStore.
func NewMySQLUserStore(db *sqlx.DB) *MySQLUserStore {
	return &MySQLUserStore{db: db}
}

func (s *MySQLUserStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM usuarios WHERE username = ? OR email = ?`,
		username, email)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

func (s *MySQLUserStore) Create(ctx context.Context, user *User, account *Account) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO usuarios (username, nombre, apellido, tipo_doc, cedula, nacimiento, telefono, email, clave)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.FirstName, user.LastName, user.DocumentType, user.Identity,
		user.BirthDate, user.Phone, user.Email, user.PasswordHash)
	if err != nil {
		_ = tx.Rollback()
		return 0, mapMySQLInsertError("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("read user id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cuentas (usuario_id, saldo, numero_tarjeta) VALUES (?, ?, ?)`,
		id, account.Balance, account.CardNumber)
	if err != nil {
		_ = tx.Rollback()
		return 0, mapMySQLInsertError("insert account", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit registration: %w", err)
	}
	return id, nil
}

func mapMySQLInsertError(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%s: %w (%s)", op, ErrDuplicateUser, myErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *MySQLUserStore) FindCredentials(ctx context.Context, username string) (*Credentials, error) {
	var c Credentials
	err := s.db.GetContext(ctx, &c,
		`SELECT id, clave FROM usuarios WHERE username = ?`,
		username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select credentials: %w", err)
	}
	return &c, nil
}

type mysqlProfileRow struct {
	FirstName  string  `db:"nombre"`
	LastName   string  `db:"apellido"`
	Balance    float64 `db:"saldo"`
	CardNumber string  `db:"numero_tarjeta"`
}

func (s *MySQLUserStore) LoadProfile(ctx context.Context, userID int64) (*Profile, error) {
	var row mysqlProfileRow
	err := s.db.GetContext(ctx, &row, `
		SELECT u.nombre, u.apellido, COALESCE(c.saldo, 0) AS saldo, COALESCE(c.numero_tarjeta, '') AS numero_tarjeta
		FROM usuarios u
		LEFT JOIN cuentas c ON c.usuario_id = u.id
		WHERE u.id = ?`,
		userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select profile: %w", err)
	}
	return &Profile{
		UserID:     userID,
		Name:       fullName(row.FirstName, row.LastName),
		Balance:    row.Balance,
		CardNumber: row.CardNumber,
	}, nil
}
