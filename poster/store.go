package poster

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const keyPrefix = "poster:"

// Entry is a memoized lookup result. A miss is stored with Found == false.
type Entry struct {
	URL   string `json:"url,omitempty"`
	Found bool   `json:"found"`
}

// Store persists lookup results across process restarts.
type Store interface {
	Get(title string) (Entry, bool, error)
	Put(title string, e Entry) error
}

// BadgerStore keeps lookup results in a Badger database.
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// OpenBadgerStore opens or creates a Badger database in dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("poster: open cache %s: %w", dir, err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

// NewBadgerStoreFromDB wraps an existing database. Close leaves it open.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get returns the stored result for title.
func (s *BadgerStore) Get(title string) (Entry, bool, error) {
	var e Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + title))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("poster: read cache: %w", err)
	}
	return e, true, nil
}

// Put stores the result for title.
func (s *BadgerStore) Put(title string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("poster: encode cache entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+title), data)
	})
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if s == nil || !s.owned {
		return nil
	}
	return s.db.Close()
}
