// Package store defines the persistence boundary for albums and pages.
// Backends live in subpackages (memory, sqlite) and are selected at startup.
package store

import (
	"context"
	"errors"

	"github.com/albumpress/albumpress/internal/album"
)

// ErrNotFound is returned when a record is absent or not owned by the caller.
var ErrNotFound = errors.New("not found")

// AlbumReader provides the read access the export pipeline needs. All lookups
// are scoped to a user: a record owned by someone else behaves like a missing
// record.
type AlbumReader interface {
	// GetAlbum retrieves an album by id, scoped to the user. Returns ErrNotFound
	// when the album is absent or owned by a different user.
	GetAlbum(ctx context.Context, id, userID string) (*album.Album, error)
	// GetPages returns an album's pages ordered by Page.Order ascending.
	// A non-empty pageIDs filters the result to the requested subset.
	GetPages(ctx context.Context, albumID, userID string, pageIDs []string) ([]album.Page, error)
}

// AlbumStore is the full CRUD surface backing the HTTP layer.
type AlbumStore interface {
	AlbumReader

	CreateAlbum(ctx context.Context, a *album.Album) error
	ListAlbums(ctx context.Context, userID string) ([]album.Album, error)
	UpdateAlbum(ctx context.Context, a *album.Album) error
	// DeleteAlbum removes the album and cascades to its pages.
	DeleteAlbum(ctx context.Context, id, userID string) error

	CreatePage(ctx context.Context, userID string, p *album.Page) error
	GetPage(ctx context.Context, id, userID string) (*album.Page, error)
	UpdatePage(ctx context.Context, userID string, p *album.Page) error
	DeletePage(ctx context.Context, id, userID string) error
	// ReorderPages rewrites the print order of an album's pages to match pageIDs.
	ReorderPages(ctx context.Context, albumID, userID string, pageIDs []string) error
}
