package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/albumpress/albumpress/internal/album"
	"github.com/albumpress/albumpress/internal/store"
)

func seed(t *testing.T) (store.AlbumStore, *album.Album) {
	t.Helper()
	s := NewAlbumStore()
	a := &album.Album{UserID: "u1", Name: "Trip", CanvasSizeID: "square-20", ThemeID: "classic"}
	if err := s.CreateAlbum(context.Background(), a); err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}
	return s, a
}

func TestCreateAlbumAssignsID(t *testing.T) {
	_, a := seed(t)
	if a.ID == "" {
		t.Error("created album must get an id")
	}
	if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
		t.Error("created album must get timestamps")
	}
}

func TestGetAlbumOwnership(t *testing.T) {
	s, a := seed(t)
	ctx := context.Background()

	if _, err := s.GetAlbum(ctx, a.ID, "u1"); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := s.GetAlbum(ctx, a.ID, "intruder"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign lookup must be ErrNotFound, got %v", err)
	}
	if _, err := s.GetAlbum(ctx, "missing", "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing lookup must be ErrNotFound, got %v", err)
	}
}

func TestDeleteAlbumCascades(t *testing.T) {
	s, a := seed(t)
	ctx := context.Background()

	p := &album.Page{AlbumID: a.ID}
	if err := s.CreatePage(ctx, "u1", p); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if err := s.DeleteAlbum(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("DeleteAlbum: %v", err)
	}
	if _, err := s.GetPage(ctx, p.ID, "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("pages must be deleted with the album, got %v", err)
	}
}

func TestGetPagesOrderAndSubset(t *testing.T) {
	s, a := seed(t)
	ctx := context.Background()

	first := &album.Page{AlbumID: a.ID, Order: 2}
	second := &album.Page{AlbumID: a.ID, Order: 1}
	third := &album.Page{AlbumID: a.ID} // appends after the explicit orders
	for _, p := range []*album.Page{first, second, third} {
		if err := s.CreatePage(ctx, "u1", p); err != nil {
			t.Fatalf("CreatePage: %v", err)
		}
	}

	pages, err := s.GetPages(ctx, a.ID, "u1", nil)
	if err != nil {
		t.Fatalf("GetPages: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[0].ID != second.ID || pages[1].ID != first.ID || pages[2].ID != third.ID {
		t.Error("pages must be ordered by print order ascending")
	}

	subset, err := s.GetPages(ctx, a.ID, "u1", []string{third.ID, first.ID})
	if err != nil {
		t.Fatalf("GetPages subset: %v", err)
	}
	if len(subset) != 2 {
		t.Fatalf("expected 2 pages in subset, got %d", len(subset))
	}
	if subset[0].ID != first.ID {
		t.Error("subset must keep print order, not request order")
	}
}

func TestReorderPages(t *testing.T) {
	s, a := seed(t)
	ctx := context.Background()

	p1 := &album.Page{AlbumID: a.ID}
	p2 := &album.Page{AlbumID: a.ID}
	for _, p := range []*album.Page{p1, p2} {
		if err := s.CreatePage(ctx, "u1", p); err != nil {
			t.Fatalf("CreatePage: %v", err)
		}
	}
	if err := s.ReorderPages(ctx, a.ID, "u1", []string{p2.ID, p1.ID}); err != nil {
		t.Fatalf("ReorderPages: %v", err)
	}
	pages, _ := s.GetPages(ctx, a.ID, "u1", nil)
	if pages[0].ID != p2.ID {
		t.Error("reorder must rewrite the print order")
	}
}

func TestReorderPagesForeignPage(t *testing.T) {
	s, a := seed(t)
	ctx := context.Background()

	other := &album.Album{UserID: "u1", Name: "Other"}
	if err := s.CreateAlbum(ctx, other); err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}
	foreign := &album.Page{AlbumID: other.ID}
	if err := s.CreatePage(ctx, "u1", foreign); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	err := s.ReorderPages(ctx, a.ID, "u1", []string{foreign.ID})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("reorder with a page of another album must fail, got %v", err)
	}
}

func TestUpdateAlbumKeepsCreatedAt(t *testing.T) {
	s, a := seed(t)
	ctx := context.Background()

	created := a.CreatedAt
	a.Name = "Renamed"
	if err := s.UpdateAlbum(ctx, a); err != nil {
		t.Fatalf("UpdateAlbum: %v", err)
	}
	got, _ := s.GetAlbum(ctx, a.ID, "u1")
	if got.Name != "Renamed" {
		t.Errorf("expected renamed album, got '%s'", got.Name)
	}
	if !got.CreatedAt.Equal(created) {
		t.Error("update must not rewrite CreatedAt")
	}
}

func TestListAlbumsScoped(t *testing.T) {
	s, _ := seed(t)
	ctx := context.Background()

	other := &album.Album{UserID: "u2", Name: "Theirs"}
	if err := s.CreateAlbum(ctx, other); err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}

	mine, err := s.ListAlbums(ctx, "u1")
	if err != nil {
		t.Fatalf("ListAlbums: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("expected 1 album for u1, got %d", len(mine))
	}
}
