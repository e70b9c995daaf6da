package export

import (
	"sort"
	"sync"
	"time"

	"github.com/albumpress/albumpress/internal/render"
)

// Status is the lifecycle state of an export task.
type Status string

// Status constants. Pending and processing are transient; completed and
// failed are terminal and are never left once reached.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is one export request's tracked unit of work. Records are mutated only
// by the Manager through the TaskStore's lock; readers always get copies.
type Task struct {
	ID          string            `json:"id"`
	AlbumID     string            `json:"album_id"`
	PageIDs     []string          `json:"page_ids,omitempty"`
	UserID      string            `json:"user_id"`
	Status      Status            `json:"status"`
	Progress    int               `json:"progress"`
	Options     render.PDFOptions `json:"options"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Filename    string            `json:"filename,omitempty"`
	FilePath    string            `json:"-"`
	DownloadURL string            `json:"download_url,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// TaskStore is the in-process task collection. It has no external durability
// by design: a restart loses all records, including completed ones whose
// files are still on disk.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewTaskStore creates an empty task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*Task)}
}

// Insert adds a task record.
func (s *TaskStore) Insert(t *Task) {
	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
}

// Get returns a copy of the task record.
func (s *TaskStore) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Update applies fn to the task under the store lock. Returns false when the
// task does not exist.
func (s *TaskStore) Update(id string, fn func(*Task)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	fn(t)
	return true
}

// ByUser returns copies of a user's tasks, newest first.
func (s *TaskStore) ByUser(userID string) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]Task, 0)
	for _, t := range s.tasks {
		if t.UserID == userID {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks
}

// All returns copies of every task record.
func (s *TaskStore) All() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, *t)
	}
	return tasks
}

// Delete removes a task record.
func (s *TaskStore) Delete(id string) {
	s.mu.Lock()
	delete(s.tasks, id)
	s.mu.Unlock()
}
