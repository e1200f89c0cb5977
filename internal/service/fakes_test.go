package service

import (
	"context"
	"sync"

	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
	"computing-marketplace/api/internal/worker/queue"
)

type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]models.User
	email map[string]string
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]models.User{}, email: map[string]string{}}
}

func (m *memoryUsers) Create(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.email[user.Email]; ok {
		return models.User{}, repository.ErrConflict
	}
	m.byID[user.ID] = user
	m.email[user.Email] = user.ID
	return user, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.email[email]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return m.byID[id], nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id string, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = hash
	m.byID[id] = user
	return nil
}

func (m *memoryUsers) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsActive = active
	m.byID[id] = user
	return nil
}

func (m *memoryUsers) setActive(email string, active bool) {
	m.mu.Lock()
	id := m.email[email]
	m.mu.Unlock()
	_ = m.SetActive(context.Background(), id, active)
}

type memoryActivity struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (m *memoryActivity) Create(_ context.Context, entry models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryActivity) Recent(_ context.Context, limit int) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return append([]models.ActivityLog{}, m.entries[:limit]...), nil
}

func (m *memoryActivity) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type recordingQueue struct {
	mu    sync.Mutex
	tasks []queue.Task
	err   error
}

func (q *recordingQueue) Enqueue(_ context.Context, task queue.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, task)
	return "1-0", nil
}

func strPtr(s string) *string {
	return &s
}
