package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/albumpress/albumpress/internal/album"
	"github.com/albumpress/albumpress/internal/store"
)

func newTestStore(t *testing.T) *AlbumStore {
	t.Helper()
	s, err := NewAlbumStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedAlbum(t *testing.T, s *AlbumStore) *album.Album {
	t.Helper()
	a := &album.Album{
		UserID:       "u1",
		Name:         "Trip",
		CanvasSizeID: "square-20",
		ThemeID:      "classic",
		Tags:         []string{"travel", "2025"},
	}
	if err := s.CreateAlbum(context.Background(), a); err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}
	return a
}

func TestAlbumRoundTrip(t *testing.T) {
	s := newTestStore(t)
	a := seedAlbum(t, s)

	got, err := s.GetAlbum(context.Background(), a.ID, "u1")
	if err != nil {
		t.Fatalf("GetAlbum: %v", err)
	}
	if got.Name != "Trip" || got.CanvasSizeID != "square-20" {
		t.Errorf("unexpected album: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "travel" {
		t.Errorf("tags must round-trip through the JSON column, got %v", got.Tags)
	}
}

func TestAlbumOwnership(t *testing.T) {
	s := newTestStore(t)
	a := seedAlbum(t, s)

	if _, err := s.GetAlbum(context.Background(), a.ID, "intruder"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign lookup must be ErrNotFound, got %v", err)
	}
	if err := s.DeleteAlbum(context.Background(), a.ID, "intruder"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign delete must be ErrNotFound, got %v", err)
	}
}

func TestDeleteAlbumCascades(t *testing.T) {
	s := newTestStore(t)
	a := seedAlbum(t, s)
	ctx := context.Background()

	p := &album.Page{AlbumID: a.ID}
	if err := s.CreatePage(ctx, "u1", p); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if err := s.DeleteAlbum(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("DeleteAlbum: %v", err)
	}
	if _, err := s.GetPage(ctx, p.ID, "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cascade must delete pages, got %v", err)
	}
}

func TestPageElementsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	a := seedAlbum(t, s)
	ctx := context.Background()

	p := &album.Page{
		AlbumID: a.ID,
		Elements: []album.Element{
			{
				ID: "el-1", Type: album.ElementPhoto,
				X: 0.1, Y: 0.2, Width: 0.5, Height: 0.4, ZIndex: 3,
				Photo: &album.PhotoElement{URL: "https://example.com/a.jpg", Brightness: 1.2},
			},
			{
				ID: "el-2", Type: album.ElementText,
				X: 0, Y: 0.8, Width: 1, Height: 0.1,
				Text: &album.TextElement{Content: "The End", FontSize: 18},
			},
		},
	}
	if err := s.CreatePage(ctx, "u1", p); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	got, err := s.GetPage(ctx, p.ID, "u1")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(got.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(got.Elements))
	}
	if got.Elements[0].Photo == nil || got.Elements[0].Photo.URL != "https://example.com/a.jpg" {
		t.Errorf("photo element must round-trip, got %+v", got.Elements[0])
	}
	if got.Elements[1].Text == nil || got.Elements[1].Text.Content != "The End" {
		t.Errorf("text element must round-trip, got %+v", got.Elements[1])
	}
}

func TestPageWithoutElementsStaysEmptyList(t *testing.T) {
	s := newTestStore(t)
	a := seedAlbum(t, s)
	ctx := context.Background()

	p := &album.Page{AlbumID: a.ID}
	if err := s.CreatePage(ctx, "u1", p); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	got, err := s.GetPage(ctx, p.ID, "u1")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got.Elements == nil {
		t.Error("elements must decode to an empty list, not nil")
	}
}

func TestCreatePageAppendsOrder(t *testing.T) {
	s := newTestStore(t)
	a := seedAlbum(t, s)
	ctx := context.Background()

	p1 := &album.Page{AlbumID: a.ID}
	p2 := &album.Page{AlbumID: a.ID}
	if err := s.CreatePage(ctx, "u1", p1); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if err := s.CreatePage(ctx, "u1", p2); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if p2.Order <= p1.Order {
		t.Errorf("second page must append after the first, got %d then %d", p1.Order, p2.Order)
	}
}

func TestGetPagesSubsetKeepsPrintOrder(t *testing.T) {
	s := newTestStore(t)
	a := seedAlbum(t, s)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		p := &album.Page{AlbumID: a.ID, Order: i + 1}
		if err := s.CreatePage(ctx, "u1", p); err != nil {
			t.Fatalf("CreatePage: %v", err)
		}
		ids = append(ids, p.ID)
	}

	// Request out of order; result must come back in print order.
	pages, err := s.GetPages(ctx, a.ID, "u1", []string{ids[2], ids[0]})
	if err != nil {
		t.Fatalf("GetPages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].ID != ids[0] || pages[1].ID != ids[2] {
		t.Error("subset must be ordered by print order ascending")
	}
}

func TestReorderPages(t *testing.T) {
	s := newTestStore(t)
	a := seedAlbum(t, s)
	ctx := context.Background()

	p1 := &album.Page{AlbumID: a.ID, Order: 1}
	p2 := &album.Page{AlbumID: a.ID, Order: 2}
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

func TestUpdateAlbumMissing(t *testing.T) {
	s := newTestStore(t)
	a := &album.Album{ID: "missing", UserID: "u1", Name: "Ghost"}
	if err := s.UpdateAlbum(context.Background(), a); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("updating a missing album must be ErrNotFound, got %v", err)
	}
}
