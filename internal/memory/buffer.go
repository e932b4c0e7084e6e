package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/amishk599/kpiadvisor/internal/model"
)

const (
	humanPrefix = "Human"
	aiPrefix    = "AI"
)

// FormatBuffer renders exchanges as the plain-text conversation buffer,
// one "Human: ..." / "AI: ..." pair per exchange. An empty history yields "".
func FormatBuffer(history []model.Exchange) string {
	lines := make([]string, 0, len(history)*2)
	for _, ex := range history {
		lines = append(lines, humanPrefix+": "+ex.Input, aiPrefix+": "+ex.Output)
	}
	return strings.Join(lines, "\n")
}

// Ensure BufferStore implements model.ConversationStore.
var _ model.ConversationStore = (*BufferStore)(nil)

// BufferStore keeps the conversation in process memory. It is lost when the
// process exits.
type BufferStore struct {
	mu        sync.Mutex
	exchanges []model.Exchange
}

// NewBufferStore returns an empty in-memory store.
func NewBufferStore() *BufferStore {
	return &BufferStore{}
}

// History returns a copy of the stored exchanges, oldest first.
func (s *BufferStore) History(_ context.Context) ([]model.Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Exchange, len(s.exchanges))
	copy(out, s.exchanges)
	return out, nil
}

func (s *BufferStore) Append(_ context.Context, ex model.Exchange) error {
	s.mu.Lock()
	s.exchanges = append(s.exchanges, ex)
	s.mu.Unlock()
	return nil
}

func (s *BufferStore) Buffer(ctx context.Context) (string, error) {
	history, _ := s.History(ctx)
	return FormatBuffer(history), nil
}

func (s *BufferStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.exchanges = nil
	s.mu.Unlock()
	return nil
}
