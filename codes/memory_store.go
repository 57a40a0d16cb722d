package codes

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/ticket"
)

var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	encoded  string
	issuedAt time.Time
}

// MemoryStore keeps codes in process memory. Codes do not survive a restart
// and are not shared between instances.
type MemoryStore struct {
	entryCodec
	entries sync.Map // code -> *memoryEntry
}

func NewMemoryStore(codec ticket.Codec, opts ...Option) *MemoryStore {
	return &MemoryStore{entryCodec: newEntryCodec(codec, opts)}
}

func (s *MemoryStore) Issue(_ context.Context, t *ticket.Ticket) (string, error) {
	encoded, err := s.encode(t)
	if err != nil {
		return "", fmt.Errorf("[MemoryStore Issue] %w", err)
	}

	entry := &memoryEntry{encoded: encoded, issuedAt: s.nowFunc()}
	for range maxIssueAttempts {
		code, err := GenerateCode(s.codeLength)
		if err != nil {
			return "", fmt.Errorf("[MemoryStore Issue] %w", err)
		}
		if _, loaded := s.entries.LoadOrStore(code, entry); !loaded {
			return code, nil
		}
	}
	return "", fmt.Errorf("[MemoryStore Issue] %w", errCodeCollision)
}

func (s *MemoryStore) Redeem(_ context.Context, code string) (*ticket.Ticket, error) {
	value, ok := s.entries.LoadAndDelete(code)
	if !ok {
		return nil, apperrors.ErrCodeNotFound
	}
	entry := value.(*memoryEntry)
	return s.decode(entry.encoded, entry.issuedAt)
}

func (s *MemoryStore) Cleanup(_ context.Context) (int, error) {
	removed := 0
	s.entries.Range(func(key, value any) bool {
		if s.expired(value.(*memoryEntry).issuedAt) && s.entries.CompareAndDelete(key, value) {
			removed++
		}
		return true
	})
	return removed, nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *MemoryStore) Close() error {
	return nil
}
