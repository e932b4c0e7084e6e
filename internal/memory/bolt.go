package memory

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/amishk599/kpiadvisor/internal/model"
)

// Ensure BoltStore implements model.ConversationStore.
var _ model.ConversationStore = (*BoltStore)(nil)

// BoltStore persists exchanges in a bbolt file, one bucket per session.
// Keys are big-endian sequence numbers so a cursor walks them in insertion order.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

// NewBoltStore opens (or creates) the bbolt database at dbPath.
func NewBoltStore(dbPath, session string) (*BoltStore, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	return &BoltStore{db: db, bucket: []byte("session:" + session)}, nil
}

// History returns the session's exchanges in insertion order.
func (s *BoltStore) History(_ context.Context) ([]model.Exchange, error) {
	var history []model.Exchange
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var ex model.Exchange
			if err := json.Unmarshal(v, &ex); err != nil {
				return fmt.Errorf("decoding exchange %d: %w", binary.BigEndian.Uint64(k), err)
			}
			history = append(history, ex)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("reading history from %s: %w", s.bucket, err)
	}
	return history, nil
}

// Append records one exchange at the end of the session.
func (s *BoltStore) Append(_ context.Context, ex model.Exchange) error {
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}
	value, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("encoding exchange %s: %w", ex.ID, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("appending exchange %s: %w", ex.ID, err)
	}
	return nil
}

func (s *BoltStore) Buffer(ctx context.Context) (string, error) {
	history, err := s.History(ctx)
	if err != nil {
		return "", err
	}
	return FormatBuffer(history), nil
}

// Clear drops the session bucket. Clearing an empty session is a no-op.
func (s *BoltStore) Clear(_ context.Context) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket(s.bucket)
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("clearing %s: %w", s.bucket, err)
	}
	return nil
}

// Close releases the file lock held by bbolt.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
