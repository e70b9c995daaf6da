// Package sqlite persists albums and pages in a local SQLite database.
// Element lists are stored as JSON columns; the layout editor treats them as
// opaque payloads, so there is no benefit in normalizing them into rows.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/albumpress/albumpress/internal/album"
	"github.com/albumpress/albumpress/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS albums (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	name           TEXT NOT NULL,
	canvas_size_id TEXT NOT NULL,
	theme_id       TEXT NOT NULL,
	category       TEXT NOT NULL DEFAULT '',
	tags           TEXT NOT NULL DEFAULT '[]',
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS pages (
	id               TEXT PRIMARY KEY,
	album_id         TEXT NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
	sort_order       INTEGER NOT NULL,
	background_color TEXT NOT NULL DEFAULT '',
	background_image TEXT NOT NULL DEFAULT '',
	elements         TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_pages_album ON pages(album_id, sort_order);
`

// AlbumStore implements store.AlbumStore on a local SQLite file.
type AlbumStore struct {
	db *sqlx.DB
}

// NewAlbumStore opens (creating if necessary) the SQLite database at path.
func NewAlbumStore(path string) (*AlbumStore, error) {
	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	logrus.WithField("path", path).Info("sqlite album store ready")
	return &AlbumStore{db: db}, nil
}

// Close releases the database handle.
func (s *AlbumStore) Close() error {
	return s.db.Close()
}

type albumRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Name         string    `db:"name"`
	CanvasSizeID string    `db:"canvas_size_id"`
	ThemeID      string    `db:"theme_id"`
	Category     string    `db:"category"`
	Tags         string    `db:"tags"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r albumRow) toAlbum() (album.Album, error) {
	var tags []string
	if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
		return album.Album{}, fmt.Errorf("decoding tags for album %s: %w", r.ID, err)
	}
	return album.Album{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		CanvasSizeID: r.CanvasSizeID,
		ThemeID:      r.ThemeID,
		Category:     r.Category,
		Tags:         tags,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

type pageRow struct {
	ID              string `db:"id"`
	AlbumID         string `db:"album_id"`
	SortOrder       int    `db:"sort_order"`
	BackgroundColor string `db:"background_color"`
	BackgroundImage string `db:"background_image"`
	Elements        string `db:"elements"`
}

func (r pageRow) toPage() (album.Page, error) {
	var elements []album.Element
	if err := json.Unmarshal([]byte(r.Elements), &elements); err != nil {
		return album.Page{}, fmt.Errorf("decoding elements for page %s: %w", r.ID, err)
	}
	return album.Page{
		ID:              r.ID,
		AlbumID:         r.AlbumID,
		Order:           r.SortOrder,
		BackgroundColor: r.BackgroundColor,
		BackgroundImage: r.BackgroundImage,
		Elements:        elements,
	}, nil
}

func (s *AlbumStore) CreateAlbum(ctx context.Context, a *album.Album) error {
	if a.ID == "" {
		a.ID = ulid.Make().String()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO albums (id, user_id, name, canvas_size_id, theme_id, category, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, a.CanvasSizeID, a.ThemeID, a.Category, string(tags), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting album: %w", err)
	}
	return nil
}

func (s *AlbumStore) GetAlbum(ctx context.Context, id, userID string) (*album.Album, error) {
	var row albumRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM albums WHERE id = ? AND user_id = ?`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying album: %w", err)
	}
	a, err := row.toAlbum()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AlbumStore) ListAlbums(ctx context.Context, userID string) ([]album.Album, error) {
	var rows []albumRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM albums WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}
	albums := make([]album.Album, 0, len(rows))
	for _, row := range rows {
		a, err := row.toAlbum()
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	return albums, nil
}

func (s *AlbumStore) UpdateAlbum(ctx context.Context, a *album.Album) error {
	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	a.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE albums SET name = ?, canvas_size_id = ?, theme_id = ?, category = ?, tags = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		a.Name, a.CanvasSizeID, a.ThemeID, a.Category, string(tags), a.UpdatedAt, a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("updating album: %w", err)
	}
	return requireRowAffected(res)
}

func (s *AlbumStore) DeleteAlbum(ctx context.Context, id, userID string) error {
	// ON DELETE CASCADE removes the album's pages.
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM albums WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting album: %w", err)
	}
	return requireRowAffected(res)
}

func (s *AlbumStore) CreatePage(ctx context.Context, userID string, p *album.Page) error {
	if _, err := s.GetAlbum(ctx, p.AlbumID, userID); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = ulid.Make().String()
	}
	if p.Order == 0 {
		var maxOrder sql.NullInt64
		if err := s.db.GetContext(ctx, &maxOrder,
			`SELECT MAX(sort_order) FROM pages WHERE album_id = ?`, p.AlbumID); err != nil {
			return fmt.Errorf("querying page order: %w", err)
		}
		if maxOrder.Valid {
			p.Order = int(maxOrder.Int64) + 1
		}
	}
	elements, err := json.Marshal(elementsOrEmpty(p.Elements))
	if err != nil {
		return fmt.Errorf("encoding elements: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pages (id, album_id, sort_order, background_color, background_image, elements)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.AlbumID, p.Order, p.BackgroundColor, p.BackgroundImage, string(elements))
	if err != nil {
		return fmt.Errorf("inserting page: %w", err)
	}
	return nil
}

func (s *AlbumStore) GetPage(ctx context.Context, id, userID string) (*album.Page, error) {
	var row pageRow
	err := s.db.GetContext(ctx, &row,
		`SELECT p.* FROM pages p JOIN albums a ON a.id = p.album_id
		 WHERE p.id = ? AND a.user_id = ?`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying page: %w", err)
	}
	p, err := row.toPage()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *AlbumStore) GetPages(ctx context.Context, albumID, userID string, pageIDs []string) ([]album.Page, error) {
	if _, err := s.GetAlbum(ctx, albumID, userID); err != nil {
		return nil, err
	}

	query := `SELECT * FROM pages WHERE album_id = ?`
	args := []any{albumID}
	if len(pageIDs) > 0 {
		query += ` AND id IN (?` + strings.Repeat(",?", len(pageIDs)-1) + `)`
		for _, id := range pageIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY sort_order ASC`

	var rows []pageRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	pages := make([]album.Page, 0, len(rows))
	for _, row := range rows {
		p, err := row.toPage()
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (s *AlbumStore) UpdatePage(ctx context.Context, userID string, p *album.Page) error {
	existing, err := s.GetPage(ctx, p.ID, userID)
	if err != nil {
		return err
	}
	p.AlbumID = existing.AlbumID
	elements, err := json.Marshal(elementsOrEmpty(p.Elements))
	if err != nil {
		return fmt.Errorf("encoding elements: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE pages SET sort_order = ?, background_color = ?, background_image = ?, elements = ? WHERE id = ?`,
		p.Order, p.BackgroundColor, p.BackgroundImage, string(elements), p.ID)
	if err != nil {
		return fmt.Errorf("updating page: %w", err)
	}
	return nil
}

func (s *AlbumStore) DeletePage(ctx context.Context, id, userID string) error {
	if _, err := s.GetPage(ctx, id, userID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting page: %w", err)
	}
	return nil
}

func (s *AlbumStore) ReorderPages(ctx context.Context, albumID, userID string, pageIDs []string) error {
	if _, err := s.GetAlbum(ctx, albumID, userID); err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for i, id := range pageIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE pages SET sort_order = ? WHERE id = ? AND album_id = ?`, i, id, albumID)
		if err != nil {
			return fmt.Errorf("reordering page %s: %w", id, err)
		}
		if err := requireRowAffected(res); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// elementsOrEmpty keeps the JSON column as [] instead of null for nil slices.
func elementsOrEmpty(elements []album.Element) []album.Element {
	if elements == nil {
		return []album.Element{}
	}
	return elements
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
