// Package export orchestrates PDF export tasks. It owns the task state
// machine, runs the render pipeline in the background, and expires old
// artifacts.
//
// There is deliberately no concurrency cap: every export runs in its own
// goroutine against the shared render engine. A burst of large exports can
// therefore starve the machine; this is a known limitation, not something the
// manager throttles silently.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/albumpress/albumpress/internal/album"
	"github.com/albumpress/albumpress/internal/markup"
	"github.com/albumpress/albumpress/internal/render"
	"github.com/albumpress/albumpress/internal/store"
)

// ErrValidation marks a request rejected before any task record is created.
var ErrValidation = errors.New("validation failed")

// ErrTaskNotFound is returned for missing, foreign, or non-downloadable tasks.
var ErrTaskNotFound = errors.New("export task not found")

// ErrNotCancellable is returned when cancelling a task in a terminal state.
var ErrNotCancellable = errors.New("export task is not cancellable")

// Pipeline progress milestones. Progress is monotonic within a task and
// reaches 100 only on completion.
const (
	progressFetched  = 10
	progressMarkup   = 40
	progressRendered = 80
)

// DefaultMaxAge is how long task records and their files are kept.
const DefaultMaxAge = 24 * time.Hour

// Renderer turns a markup document into PDF bytes. The production
// implementation is render.Engine; tests substitute fakes.
type Renderer interface {
	RenderToPDF(ctx context.Context, markup string, opts render.PDFOptions) ([]byte, error)
}

// Manager accepts export requests and drives them to a terminal state.
type Manager struct {
	tasks     *TaskStore
	albums    store.AlbumReader
	renderer  Renderer
	exportDir string

	janitorStop chan struct{}
	janitorDone chan struct{}
}

// NewManager creates an export manager writing artifacts under exportDir.
// The directory is created on first use.
func NewManager(albums store.AlbumReader, renderer Renderer, exportDir string) *Manager {
	return &Manager{
		tasks:     NewTaskStore(),
		albums:    albums,
		renderer:  renderer,
		exportDir: exportDir,
	}
}

// CreateTask validates the request, records a pending task, and kicks off the
// pipeline in the background. It returns immediately; every pipeline failure
// is captured into the task record, never thrown back to the caller.
func (m *Manager) CreateTask(albumID, userID string, pageIDs []string, opts render.PDFOptions) (Task, error) {
	if albumID == "" {
		return Task{}, fmt.Errorf("%w: album id is required", ErrValidation)
	}
	if userID == "" {
		return Task{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	task := &Task{
		ID:        uuid.New().String(),
		AlbumID:   albumID,
		PageIDs:   pageIDs,
		UserID:    userID,
		Status:    StatusPending,
		Options:   opts.Merge(render.DefaultOptions()),
		CreatedAt: time.Now(),
	}
	m.tasks.Insert(task)

	logrus.WithFields(logrus.Fields{"task_id": task.ID, "album_id": albumID}).Info("export task created")
	go m.run(task.ID)

	return *task, nil
}

// Task returns a copy of the task record.
func (m *Manager) Task(id string) (Task, bool) {
	return m.tasks.Get(id)
}

// TasksForUser returns the user's tasks, newest first.
func (m *Manager) TasksForUser(userID string) []Task {
	return m.tasks.ByUser(userID)
}

// Download returns the artifact path and filename, but only when the task is
// completed, owned by the requester, and the file still exists on disk.
// Every other combination reports not-found; partial bytes are never served.
func (m *Manager) Download(taskID, userID string) (path, filename string, err error) {
	t, ok := m.tasks.Get(taskID)
	if !ok || t.UserID != userID || t.Status != StatusCompleted {
		return "", "", ErrTaskNotFound
	}
	if _, err := os.Stat(t.FilePath); err != nil {
		return "", "", ErrTaskNotFound
	}
	return t.FilePath, t.Filename, nil
}

// Cancel flips a pending or processing task to failed. The cancel is
// advisory: an in-flight render is not interrupted, but the terminal guard
// prevents the pipeline from resurrecting the task afterwards.
func (m *Manager) Cancel(taskID, userID string) error {
	t, ok := m.tasks.Get(taskID)
	if !ok || t.UserID != userID {
		return ErrTaskNotFound
	}

	cancelled := false
	m.tasks.Update(taskID, func(t *Task) {
		if t.Status.Terminal() {
			return
		}
		now := time.Now()
		t.Status = StatusFailed
		t.Error = "export cancelled by user"
		t.CompletedAt = &now
		cancelled = true
	})
	if !cancelled {
		return ErrNotCancellable
	}
	logrus.WithField("task_id", taskID).Info("export task cancelled")
	return nil
}

// CleanupExpired removes every task older than maxAge, regardless of status,
// and deletes its backing file. A failure deleting one file is logged and
// does not abort the sweep. Returns the number of removed task records.
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, t := range m.tasks.All() {
		if !t.CreatedAt.Before(cutoff) {
			continue
		}
		if t.FilePath != "" {
			if err := os.Remove(t.FilePath); err != nil && !os.IsNotExist(err) {
				logrus.WithError(err).WithField("task_id", t.ID).Warn("failed to delete expired export file")
			}
		}
		m.tasks.Delete(t.ID)
		removed++
	}
	if removed > 0 {
		logrus.WithField("removed", removed).Info("expired export tasks cleaned up")
	}
	return removed
}

// StartJanitor sweeps expired tasks periodically until StopJanitor is called.
func (m *Manager) StartJanitor(interval, maxAge time.Duration) {
	m.janitorStop = make(chan struct{})
	m.janitorDone = make(chan struct{})
	go func() {
		defer close(m.janitorDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CleanupExpired(maxAge)
			case <-m.janitorStop:
				return
			}
		}
	}()
}

// StopJanitor stops the periodic sweep.
func (m *Manager) StopJanitor() {
	if m.janitorStop == nil {
		return
	}
	close(m.janitorStop)
	<-m.janitorDone
	m.janitorStop = nil
}

// run executes the pipeline for one task. It is the outermost error boundary:
// nothing escapes to an unrelated request.
func (m *Manager) run(id string) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("task_id", id).Errorf("export pipeline panicked: %v", r)
			m.fail(id, fmt.Sprintf("internal error: %v", r))
		}
	}()

	ctx := context.Background()
	t, ok := m.tasks.Get(id)
	if !ok {
		return
	}
	log := logrus.WithFields(logrus.Fields{"task_id": id, "album_id": t.AlbumID})

	a, err := m.albums.GetAlbum(ctx, t.AlbumID, t.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.fail(id, "album not found")
		} else {
			m.fail(id, fmt.Sprintf("failed to load album: %v", err))
		}
		return
	}
	pages, err := m.albums.GetPages(ctx, t.AlbumID, t.UserID, t.PageIDs)
	if err != nil {
		m.fail(id, fmt.Sprintf("failed to load pages: %v", err))
		return
	}
	m.advance(id, StatusProcessing, progressFetched)

	canvas := album.CanvasSizeByID(a.CanvasSizeID)
	theme := album.ThemeByID(a.ThemeID)
	doc, err := markup.Generate(*a, pages, canvas, theme)
	if err != nil {
		m.fail(id, fmt.Sprintf("failed to generate markup: %v", err))
		return
	}
	m.advance(id, StatusProcessing, progressMarkup)

	pdf, err := m.renderer.RenderToPDF(ctx, doc, t.Options)
	if err != nil {
		m.fail(id, fmt.Sprintf("failed to render PDF: %v", err))
		return
	}
	m.advance(id, StatusProcessing, progressRendered)

	filename := exportFilename(a.Name, t.ID, time.Now())
	path := filepath.Join(m.exportDir, filename)
	if err := os.MkdirAll(m.exportDir, 0o750); err != nil {
		m.fail(id, fmt.Sprintf("failed to create export directory: %v", err))
		return
	}
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		m.fail(id, fmt.Sprintf("failed to write export file: %v", err))
		return
	}

	if !m.complete(id, filename, path) {
		// The task was cancelled while rendering; drop the orphaned artifact.
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warn("failed to remove artifact of cancelled export")
		}
		return
	}
	log.WithField("filename", filename).Info("export task completed")
}

// advance moves a non-terminal task forward. Progress never decreases and
// terminal states are never overwritten.
func (m *Manager) advance(id string, status Status, progress int) {
	m.tasks.Update(id, func(t *Task) {
		if t.Status.Terminal() {
			return
		}
		t.Status = status
		if progress > t.Progress {
			t.Progress = progress
		}
	})
}

// fail marks the task failed unless it already reached a terminal state.
func (m *Manager) fail(id, message string) {
	failed := false
	m.tasks.Update(id, func(t *Task) {
		if t.Status.Terminal() {
			return
		}
		now := time.Now()
		t.Status = StatusFailed
		t.Error = message
		t.CompletedAt = &now
		failed = true
	})
	if failed {
		logrus.WithFields(logrus.Fields{"task_id": id, "error": message}).Warn("export task failed")
	}
}

// complete marks the task completed. Returns false when the task left the
// processing state in the meantime (cancellation).
func (m *Manager) complete(id, filename, path string) bool {
	completed := false
	m.tasks.Update(id, func(t *Task) {
		if t.Status != StatusProcessing {
			return
		}
		now := time.Now()
		t.Status = StatusCompleted
		t.Progress = 100
		t.CompletedAt = &now
		t.Filename = filename
		t.FilePath = path
		t.DownloadURL = "/api/v1/exports/" + t.ID + "/download"
		completed = true
	})
	return completed
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// exportFilename derives the artifact name from the album's display name, a
// creation timestamp, and a slice of the task id. The timestamp alone has
// one-second granularity, so the id slice keeps two exports of the same album
// within the same second from overwriting each other.
func exportFilename(albumName, taskID string, now time.Time) string {
	name := unsafeFilenameChars.ReplaceAllString(albumName, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "album"
	}
	id := unsafeFilenameChars.ReplaceAllString(taskID, "")
	if len(id) > 8 {
		id = id[:8]
	}
	return name + "-" + now.Format("20060102-150405") + "-" + id + ".pdf"
}
