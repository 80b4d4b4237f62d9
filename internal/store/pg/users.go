package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"recylink.org/internal/auth"
)

var _ auth.UserStore = (*Store)(nil)

func (s *Store) Create(ctx context.Context, nome, email, passwordHash string, telefone *string) (auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		insert into public.usuario (nome, email, senha_hash, telefone, nivel_acesso, active, data_cadastro)
		values ($1, $2, $3, $4, 'user', true, now())
		returning id_usuario, nome, email, telefone, nivel_acesso, data_cadastro
	`, nome, email, passwordHash, telefone)

	var u auth.User
	if err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.Telefone, &u.NivelAcesso, &u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return auth.User{}, auth.ErrDuplicateEmail
		}
		return auth.User{}, fmt.Errorf("create user: %w", err)
	}
	u.Active = true
	return u, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		select id_usuario, nome, email, telefone, nivel_acesso, senha_hash, active, data_cadastro
		from public.usuario
		where email = $1
	`, email)

	var u auth.User
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.Telefone, &u.NivelAcesso, &u.PasswordHash, &u.Active, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		select id_usuario, nome, email, telefone, nivel_acesso, data_cadastro
		from public.usuario
		where id_usuario = $1
	`, id)

	var u auth.User
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.Telefone, &u.NivelAcesso, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, nome string, telefone *string) (auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		update public.usuario
		set nome = $1, telefone = $2
		where id_usuario = $3
		returning id_usuario, nome, email, telefone, nivel_acesso
	`, nome, telefone, id)

	var u auth.User
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.Telefone, &u.NivelAcesso)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// isUniqueViolation reports whether err is a Postgres unique violation
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
