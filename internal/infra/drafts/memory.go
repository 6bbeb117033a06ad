package drafts

import (
	"context"
	"sync"
	"time"

	"team_attendance_bot/internal/domain/attendance"
)

type memoryDraft struct {
	sheet     *attendance.Sheet
	expiresAt time.Time
}

// MemoryStore keeps open sheets in process memory. Drafts are lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[int64]memoryDraft
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[int64]memoryDraft),
		now:    time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, chatID int64) (*attendance.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[chatID]
	if !ok {
		return nil, attendance.ErrDraftNotFound
	}
	if !d.expiresAt.IsZero() && !s.now().Before(d.expiresAt) {
		delete(s.drafts, chatID)
		return nil, attendance.ErrDraftNotFound
	}
	return d.sheet.Clone(), nil
}

// Put stores a copy of sheet. A zero ttl keeps it until deleted.
func (s *MemoryStore) Put(_ context.Context, chatID int64, sheet *attendance.Sheet, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := memoryDraft{sheet: sheet.Clone()}
	if ttl > 0 {
		d.expiresAt = s.now().Add(ttl)
	}
	s.drafts[chatID] = d
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, chatID)
	return nil
}
