package memory

import (
	"context"
	"errors"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// BadgerMemory implements the Memory interface using BadgerDB
type BadgerMemory struct {
	db *badger.DB
}

// NewBadgerMemory opens (or creates) a BadgerDB directory at path
func NewBadgerMemory(path string) (*BadgerMemory, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // bubbletea owns the terminal

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerMemory{
		db: db,
	}, nil
}

// Store implements the Memory interface Store method
func (b *BadgerMemory) Store(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrKeyEmpty
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value))
	})
}

// Retrieve implements the Memory interface Retrieve method
func (b *BadgerMemory) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}

		// Copy value to prevent access after transaction
		val, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}
	return val, nil
}

// Delete implements the Memory interface Delete method
func (b *BadgerMemory) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// List implements the Memory interface List method
func (b *BadgerMemory) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return keys, nil
}

// Close implements the Memory interface Close method. The whole list is
// rewritten on every mutation, so stale value log entries pile up quickly;
// one GC pass on the way out keeps the directory small.
func (b *BadgerMemory) Close() error {
	if b.db == nil {
		return nil
	}
	for b.db.RunValueLogGC(0.5) == nil {
	}
	return b.db.Close()
}
