package community

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("community: not found")
	// ErrForbidden means the row exists but is not owned by the caller,
	// or an owner-scoped statement matched nothing.
	ErrForbidden         = errors.New("community: not owner")
	ErrAlreadyRegistered = errors.New("community: already registered")
)

// Store persists posts, comments, events and collection points.
// Implemented by internal/store/pg.
type Store interface {
	ListPosts(ctx context.Context) ([]Post, error)
	CreatePost(ctx context.Context, userID int64, conteudo, categoria string) (Post, error)
	GetPost(ctx context.Context, id int64) (Post, error)
	DeletePost(ctx context.Context, id, userID int64) error
	LikePost(ctx context.Context, postID, userID int64) error
	UnlikePost(ctx context.Context, postID, userID int64) error
	CountLikes(ctx context.Context, postID int64) (int64, error)

	ListComments(ctx context.Context, postID int64) ([]Comment, error)
	CreateComment(ctx context.Context, postID, userID int64, conteudo string) (Comment, error)
	DeleteComment(ctx context.Context, id, userID int64) error

	CreateEvent(ctx context.Context, ownerID int64, ev NewEvent) (Event, error)
	ListApprovedEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	UpdateOwnEvent(ctx context.Context, id, ownerID int64, ev NewEvent) (Event, error)
	DeleteOwnEvent(ctx context.Context, id, ownerID int64) error
	ListEventsByOwner(ctx context.Context, ownerID int64) ([]EventSummary, error)
	RegisterForEvent(ctx context.Context, userID, eventID int64) error
	ListRegistrations(ctx context.Context, userID int64) ([]Registration, error)

	ListCollectionPoints(ctx context.Context) ([]CollectionPoint, error)
}
