// Package history keeps the most recent transcriptions in a local
// key-value store so users can recover text that failed to paste.
package history

import (
	"encoding/binary"
	"encoding/json"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// MaxEntries caps the store; saving past the cap evicts the oldest.
const MaxEntries = 50

// Entry is one stored transcription.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	AudioSeconds float64   `json:"audio_seconds"`
	Language     string    `json:"language"`
}

// Store is a badger-backed transcription log. Keys are big-endian unix
// nanoseconds, so reverse iteration yields newest first.
type Store struct {
	db *badger.DB
}

func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores one transcription. Whitespace-only text is dropped. When
// the store exceeds MaxEntries the oldest entries are evicted.
func (s *Store) Save(e Entry) error {
	e.Text = strings.TrimSpace(e.Text)
	if e.Text == "" {
		return nil
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	value, err := json.Marshal(e)
	if err != nil {
		return err
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(e.CreatedAt.UnixNano()))

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	}); err != nil {
		return err
	}
	return s.evict()
}

// Recent returns up to n entries, newest first. n <= 0 means all.
func (s *Store) Recent(n int) ([]Entry, error) {
	if n <= 0 || n > MaxEntries {
		n = MaxEntries
	}

	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}); it.Valid() && len(entries) < n; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var e Entry
				if err := json.Unmarshal(val, &e); err != nil {
					return err
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

// Delete removes the entry with the given ID. Unknown IDs are a no-op.
func (s *Store) Delete(id uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)

		var key []byte
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var match bool
			err := item.Value(func(val []byte) error {
				var e Entry
				if err := json.Unmarshal(val, &e); err != nil {
					return err
				}
				match = e.ID == id
				return nil
			})
			if err != nil {
				it.Close()
				return err
			}
			if match {
				key = item.KeyCopy(nil)
				break
			}
		}
		it.Close()

		if key == nil {
			return nil
		}
		return txn.Delete(key)
	})
}

// Clear drops every entry.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// evict removes oldest entries beyond MaxEntries.
func (s *Store) evict() error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		if len(keys) <= MaxEntries {
			return nil
		}
		for _, key := range keys[:len(keys)-MaxEntries] {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}
