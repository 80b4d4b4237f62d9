package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recylink.org/internal/community"
)

var _ community.Store = (*Store)(nil)

const postColumns = `
	p.id_post, p.id_usuario, p.conteudo, p.categoria, p.data_criacao,
	u.nome as autor_nome, coalesce(l.cnt, 0) as likes_count
`

const postJoins = `
	from posts p
	left join public.usuario u on p.id_usuario = u.id_usuario
	left join (
		select id_post, count(*) as cnt
		from post_likes
		group by id_post
	) l on l.id_post = p.id_post
`

func (s *Store) ListPosts(ctx context.Context) ([]community.Post, error) {
	rows, err := s.pool.Query(ctx, `select `+postColumns+postJoins+` order by p.data_criacao desc`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []community.Post{}
	for rows.Next() {
		var p community.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Conteudo, &p.Categoria, &p.CreatedAt, &p.AutorNome, &p.LikesCount); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *Store) CreatePost(ctx context.Context, userID int64, conteudo, categoria string) (community.Post, error) {
	row := s.pool.QueryRow(ctx, `
		insert into posts (id_usuario, conteudo, categoria, data_criacao)
		values ($1, $2, $3, now())
		returning id_post, id_usuario, conteudo, categoria, data_criacao
	`, userID, conteudo, categoria)

	var p community.Post
	if err := row.Scan(&p.ID, &p.UserID, &p.Conteudo, &p.Categoria, &p.CreatedAt); err != nil {
		return community.Post{}, fmt.Errorf("create post: %w", err)
	}

	// Attach the author name so the feed can render without a second call.
	var nome sql.NullString
	err := s.pool.QueryRow(ctx, `select nome from public.usuario where id_usuario = $1`, userID).Scan(&nome)
	if err == nil && nome.Valid {
		p.AutorNome = &nome.String
	}
	return p, nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (community.Post, error) {
	row := s.pool.QueryRow(ctx, `select `+postColumns+postJoins+` where p.id_post = $1`, id)

	var p community.Post
	err := row.Scan(&p.ID, &p.UserID, &p.Conteudo, &p.Categoria, &p.CreatedAt, &p.AutorNome, &p.LikesCount)
	if errors.Is(err, sql.ErrNoRows) {
		return community.Post{}, community.ErrNotFound
	}
	if err != nil {
		return community.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// DeletePost removes a post after confirming the caller authored it.
func (s *Store) DeletePost(ctx context.Context, id, userID int64) error {
	var authorID int64
	err := s.pool.QueryRow(ctx, `select id_usuario from posts where id_post = $1`, id).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return community.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if authorID != userID {
		return community.ErrForbidden
	}
	if _, err := s.pool.Exec(ctx, `delete from posts where id_post = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// LikePost is idempotent: a second like from the same user is a no-op.
func (s *Store) LikePost(ctx context.Context, postID, userID int64) error {
	_, err := s.pool.Exec(ctx, `
		insert into post_likes (id_post, id_usuario, data_like)
		values ($1, $2, now())
		on conflict (id_post, id_usuario) do nothing
	`, postID, userID)
	if err != nil {
		return fmt.Errorf("like post: %w", err)
	}
	return nil
}

func (s *Store) UnlikePost(ctx context.Context, postID, userID int64) error {
	_, err := s.pool.Exec(ctx, `delete from post_likes where id_post = $1 and id_usuario = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("unlike post: %w", err)
	}
	return nil
}

func (s *Store) CountLikes(ctx context.Context, postID int64) (int64, error) {
	var cnt int64
	err := s.pool.QueryRow(ctx, `select count(*) from post_likes where id_post = $1`, postID).Scan(&cnt)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return cnt, nil
}

func (s *Store) ListComments(ctx context.Context, postID int64) ([]community.Comment, error) {
	rows, err := s.pool.Query(ctx, `
		select c.id_comment, c.id_post, c.id_usuario, c.conteudo, c.data_publicacao, u.nome as autor_nome
		from comments c
		left join public.usuario u on c.id_usuario = u.id_usuario
		where c.id_post = $1
		order by c.data_publicacao asc
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []community.Comment{}
	for rows.Next() {
		var c community.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Conteudo, &c.CreatedAt, &c.AutorNome); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *Store) CreateComment(ctx context.Context, postID, userID int64, conteudo string) (community.Comment, error) {
	row := s.pool.QueryRow(ctx, `
		insert into comments (id_post, id_usuario, conteudo, data_publicacao)
		values ($1, $2, $3, now())
		returning id_comment, id_post, id_usuario, conteudo, data_publicacao
	`, postID, userID, conteudo)

	var c community.Comment
	if err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.Conteudo, &c.CreatedAt); err != nil {
		return community.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

func (s *Store) DeleteComment(ctx context.Context, id, userID int64) error {
	var authorID int64
	err := s.pool.QueryRow(ctx, `select id_usuario from comments where id_comment = $1`, id).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return community.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if authorID != userID {
		return community.ErrForbidden
	}
	if _, err := s.pool.Exec(ctx, `delete from comments where id_comment = $1`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
