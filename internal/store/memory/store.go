// Package memory provides an in-process album store. It backs tests and the
// default development mode; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/albumpress/albumpress/internal/album"
	"github.com/albumpress/albumpress/internal/store"
)

type albumStore struct {
	mu     sync.RWMutex
	albums map[string]album.Album
	pages  map[string]album.Page
}

// NewAlbumStore creates an empty in-memory album store.
func NewAlbumStore() store.AlbumStore {
	return &albumStore{
		albums: make(map[string]album.Album),
		pages:  make(map[string]album.Page),
	}
}

func (s *albumStore) CreateAlbum(ctx context.Context, a *album.Album) error {
	if a.ID == "" {
		a.ID = ulid.Make().String()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	s.mu.Lock()
	s.albums[a.ID] = *a
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{"album_id": a.ID, "user_id": a.UserID}).Debug("album created")
	return nil
}

func (s *albumStore) GetAlbum(ctx context.Context, id, userID string) (*album.Album, error) {
	s.mu.RLock()
	a, ok := s.albums[id]
	s.mu.RUnlock()

	if !ok || a.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *albumStore) ListAlbums(ctx context.Context, userID string) ([]album.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	albums := make([]album.Album, 0)
	for _, a := range s.albums {
		if a.UserID == userID {
			albums = append(albums, a)
		}
	}
	sort.Slice(albums, func(i, j int) bool {
		return albums[i].CreatedAt.After(albums[j].CreatedAt)
	})
	return albums, nil
}

func (s *albumStore) UpdateAlbum(ctx context.Context, a *album.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.albums[a.ID]
	if !ok || existing.UserID != a.UserID {
		return store.ErrNotFound
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now()
	s.albums[a.ID] = *a
	return nil
}

func (s *albumStore) DeleteAlbum(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.albums[id]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.albums, id)
	for pid, p := range s.pages {
		if p.AlbumID == id {
			delete(s.pages, pid)
		}
	}
	logrus.WithField("album_id", id).Debug("album deleted with pages")
	return nil
}

func (s *albumStore) CreatePage(ctx context.Context, userID string, p *album.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.albums[p.AlbumID]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	if p.ID == "" {
		p.ID = ulid.Make().String()
	}
	// New pages append to the end of the print sequence unless placed explicitly.
	if p.Order == 0 {
		maxOrder := -1
		for _, existing := range s.pages {
			if existing.AlbumID == p.AlbumID && existing.Order > maxOrder {
				maxOrder = existing.Order
			}
		}
		p.Order = maxOrder + 1
	}
	s.pages[p.ID] = *p
	return nil
}

func (s *albumStore) GetPage(ctx context.Context, id, userID string) (*album.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a, ok := s.albums[p.AlbumID]
	if !ok || a.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *albumStore) GetPages(ctx context.Context, albumID, userID string, pageIDs []string) ([]album.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.albums[albumID]
	if !ok || a.UserID != userID {
		return nil, store.ErrNotFound
	}

	var wanted map[string]bool
	if len(pageIDs) > 0 {
		wanted = make(map[string]bool, len(pageIDs))
		for _, id := range pageIDs {
			wanted[id] = true
		}
	}

	pages := make([]album.Page, 0)
	for _, p := range s.pages {
		if p.AlbumID != albumID {
			continue
		}
		if wanted != nil && !wanted[p.ID] {
			continue
		}
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Order < pages[j].Order
	})
	return pages, nil
}

func (s *albumStore) UpdatePage(ctx context.Context, userID string, p *album.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.pages[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	a, ok := s.albums[existing.AlbumID]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	p.AlbumID = existing.AlbumID
	s.pages[p.ID] = *p
	return nil
}

func (s *albumStore) DeletePage(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pages[id]
	if !ok {
		return store.ErrNotFound
	}
	a, ok := s.albums[p.AlbumID]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.pages, id)
	return nil
}

func (s *albumStore) ReorderPages(ctx context.Context, albumID, userID string, pageIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.albums[albumID]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	for i, id := range pageIDs {
		p, ok := s.pages[id]
		if !ok || p.AlbumID != albumID {
			return store.ErrNotFound
		}
		p.Order = i
		s.pages[id] = p
	}
	return nil
}
