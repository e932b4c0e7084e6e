package memory

import (
	"fmt"

	"github.com/amishk599/kpiadvisor/internal/config"
	"github.com/amishk599/kpiadvisor/internal/model"
)

// Open builds the conversation store selected by cfg. The returned close
// func releases any file handle and is safe to call for every backend.
func Open(cfg config.MemoryConfig) (model.ConversationStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendBuffer, "":
		return NewBufferStore(), func() error { return nil }, nil
	case config.BackendSQLite:
		s, err := NewSQLiteStore(cfg.Path, cfg.Session)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendBolt:
		s, err := NewBoltStore(cfg.Path, cfg.Session)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown memory backend %q", cfg.Backend)
	}
}
