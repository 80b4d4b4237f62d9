package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recylink.org/internal/community"
)

// CreateEvent publishes the event immediately; the approval column stays
// for a future moderation queue.
func (s *Store) CreateEvent(ctx context.Context, ownerID int64, ev community.NewEvent) (community.Event, error) {
	row := s.pool.QueryRow(ctx, `
		insert into evento (titulo, descricao, localizacao, data_evento, imagem_url, sugerido_por_id, status_aprovacao, data_cadastro)
		values ($1, $2, $3, $4, $5, $6, 'aprovado', now())
		returning id_evento, titulo, descricao, localizacao, data_evento, imagem_url, sugerido_por_id, status_aprovacao, data_cadastro
	`, ev.Titulo, ev.Descricao, ev.Localizacao, ev.DataEvento, ev.ImagemURL, ownerID)

	return scanEvent(row)
}

func (s *Store) ListApprovedEvents(ctx context.Context) ([]community.Event, error) {
	rows, err := s.pool.Query(ctx, `
		select e.id_evento, e.titulo, e.descricao, e.localizacao, e.data_evento, e.imagem_url,
		       e.sugerido_por_id, e.status_aprovacao, e.data_cadastro, u.nome as sugerido_por_nome
		from evento e
		left join public.usuario u on e.sugerido_por_id = u.id_usuario
		where e.status_aprovacao = 'aprovado'
		order by e.data_evento asc
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []community.Event{}
	for rows.Next() {
		var e community.Event
		if err := rows.Scan(&e.ID, &e.Titulo, &e.Descricao, &e.Localizacao, &e.DataEvento, &e.ImagemURL,
			&e.SugeridoPorID, &e.Status, &e.CreatedAt, &e.SugeridoPorNome); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *Store) GetEvent(ctx context.Context, id int64) (community.Event, error) {
	row := s.pool.QueryRow(ctx, `
		select id_evento, titulo, descricao, localizacao, data_evento, imagem_url, sugerido_por_id, status_aprovacao, data_cadastro
		from evento
		where id_evento = $1
	`, id)

	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return community.Event{}, community.ErrNotFound
	}
	return ev, err
}

// UpdateOwnEvent updates in one statement scoped to the owner; a miss is
// reported as ErrForbidden without revealing whether the event exists.
func (s *Store) UpdateOwnEvent(ctx context.Context, id, ownerID int64, ev community.NewEvent) (community.Event, error) {
	row := s.pool.QueryRow(ctx, `
		update evento
		set titulo = $1, descricao = $2, localizacao = $3, data_evento = $4, imagem_url = $5
		where id_evento = $6 and sugerido_por_id = $7
		returning id_evento, titulo, descricao, localizacao, data_evento, imagem_url, sugerido_por_id, status_aprovacao, data_cadastro
	`, ev.Titulo, ev.Descricao, ev.Localizacao, ev.DataEvento, ev.ImagemURL, id, ownerID)

	updated, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return community.Event{}, community.ErrForbidden
	}
	return updated, err
}

func (s *Store) DeleteOwnEvent(ctx context.Context, id, ownerID int64) error {
	var deleted int64
	err := s.pool.QueryRow(ctx, `
		delete from evento
		where id_evento = $1 and sugerido_por_id = $2
		returning id_evento
	`, id, ownerID).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return community.ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *Store) ListEventsByOwner(ctx context.Context, ownerID int64) ([]community.EventSummary, error) {
	rows, err := s.pool.Query(ctx, `
		select id_evento, titulo, data_evento, status_aprovacao, data_cadastro
		from evento
		where sugerido_por_id = $1
		order by data_cadastro desc
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list own events: %w", err)
	}
	defer rows.Close()

	events := []community.EventSummary{}
	for rows.Next() {
		var e community.EventSummary
		if err := rows.Scan(&e.ID, &e.Titulo, &e.DataEvento, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event summary: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list own events: %w", err)
	}
	return events, nil
}

func (s *Store) RegisterForEvent(ctx context.Context, userID, eventID int64) error {
	_, err := s.pool.Exec(ctx, `insert into inscricao_evento (id_usuario, id_evento) values ($1, $2)`, userID, eventID)
	if err != nil {
		if isUniqueViolation(err) {
			return community.ErrAlreadyRegistered
		}
		return fmt.Errorf("register for event: %w", err)
	}
	return nil
}

func (s *Store) ListRegistrations(ctx context.Context, userID int64) ([]community.Registration, error) {
	rows, err := s.pool.Query(ctx, `
		select ie.data_inscricao, e.titulo, e.data_evento
		from inscricao_evento ie
		join evento e on ie.id_evento = e.id_evento
		where ie.id_usuario = $1
		order by ie.data_inscricao desc
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	regs := []community.Registration{}
	for rows.Next() {
		var r community.Registration
		if err := rows.Scan(&r.DataInscricao, &r.Titulo, &r.DataEvento); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

func scanEvent(row *sql.Row) (community.Event, error) {
	var e community.Event
	err := row.Scan(&e.ID, &e.Titulo, &e.Descricao, &e.Localizacao, &e.DataEvento, &e.ImagemURL,
		&e.SugeridoPorID, &e.Status, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return community.Event{}, err
		}
		return community.Event{}, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}
