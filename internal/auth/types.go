package auth

import (
	"context"
	"time"
)

// User is an account row from the usuario table. JSON field names follow
// the wire format the frontend already consumes.
type User struct {
	ID           int64      `json:"id_usuario"`
	Nome         string     `json:"nome"`
	Email        string     `json:"email"`
	Telefone     *string    `json:"telefone,omitempty"`
	NivelAcesso  string     `json:"nivel_acesso"`
	Active       bool       `json:"-"`
	CreatedAt    *time.Time `json:"data_cadastro,omitempty"`
	PasswordHash string     `json:"-"`
}

// Principal is the authenticated identity for one request. It is built
// fresh from verified token claims and never persisted or shared.
type Principal struct {
	UserID string
	Role   string
	Name   string
}

// UserStore persists accounts. Implemented by internal/store/pg.
type UserStore interface {
	Create(ctx context.Context, nome, email, passwordHash string, telefone *string) (User, error)
	// FindByEmail returns the user including password hash and active flag.
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	UpdateProfile(ctx context.Context, id int64, nome string, telefone *string) (User, error)
}
