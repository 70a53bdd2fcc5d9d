// Package auth, as previously noted, handles authentication.
// This file, `models.go`, defines the records the auth flows read and write.
package auth

import "time"

// User represents a row of the `usuarios` table.
type User struct {
	ID           int64
	Username     string
	FirstName    string // nombre
	LastName     string // apellido
	DocumentType string // tipo_doc
	Identity     string // cedula
	BirthDate    time.Time
	Phone        string
	Email        string
	PasswordHash string // clave; bcrypt only, never the plain password
}

// Account is the display record created alongside every user (`cuentas`).
type Account struct {
	UserID     int64
	Balance    float64
	CardNumber string
}

// Credentials is what login needs to verify a password.
type Credentials struct {
	UserID       int64  `db:"id"`
	PasswordHash string `db:"clave"`
}

// Profile holds the display attributes cached in the session at login.
type Profile struct {
	UserID     int64
	Name       string
	Balance    float64
	CardNumber string
}
