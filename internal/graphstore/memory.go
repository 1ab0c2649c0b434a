package graphstore

import (
	"bytes"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/aleksaelezovic/trigo/pkg/store"
)

// memoryStorage implements trigo's store.Storage over badger running in
// in-memory mode. The whole graph lives for the lifetime of the process;
// nothing ever touches disk.
type memoryStorage struct {
	db *badger.DB
}

func newMemoryStorage() (*memoryStorage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return &memoryStorage{db: db}, nil
}

func (s *memoryStorage) Begin(writable bool) (store.Transaction, error) {
	return &memoryTxn{txn: s.db.NewTransaction(writable), writable: writable}, nil
}

func (s *memoryStorage) Close() error { return s.db.Close() }

// Sync is a no-op for in-memory storage.
func (s *memoryStorage) Sync() error { return nil }

type memoryTxn struct {
	txn      *badger.Txn
	writable bool
}

func (t *memoryTxn) Get(table store.Table, key []byte) ([]byte, error) {
	item, err := t.txn.Get(store.PrefixKey(table, key))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	var value []byte
	if err := item.Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	}); err != nil {
		return nil, err
	}
	return value, nil
}

func (t *memoryTxn) Set(table store.Table, key, value []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	return t.txn.Set(store.PrefixKey(table, key), value)
}

func (t *memoryTxn) Delete(table store.Table, key []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	return t.txn.Delete(store.PrefixKey(table, key))
}

func (t *memoryTxn) Scan(table store.Table, start, end []byte) (store.Iterator, error) {
	tablePrefix := store.TablePrefix(table)
	seekKey := tablePrefix
	scanPrefix := tablePrefix
	if start != nil {
		seekKey = store.PrefixKey(table, start)
		scanPrefix = seekKey
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = scanPrefix

	var endKey []byte
	if end != nil {
		endKey = store.PrefixKey(table, end)
	}

	return &memoryIterator{
		it:      t.txn.NewIterator(opts),
		prefix:  tablePrefix,
		seekKey: seekKey,
		endKey:  endKey,
	}, nil
}

func (t *memoryTxn) Commit() error { return t.txn.Commit() }

func (t *memoryTxn) Rollback() error {
	t.txn.Discard()
	return nil
}

type memoryIterator struct {
	it       *badger.Iterator
	prefix   []byte
	seekKey  []byte
	endKey   []byte
	started  bool
	hasValue bool
}

func (i *memoryIterator) Next() bool {
	if !i.started {
		i.it.Seek(i.seekKey)
		i.started = true
	} else {
		i.it.Next()
	}
	if !i.it.Valid() {
		i.hasValue = false
		return false
	}
	if i.endKey != nil && bytes.Compare(i.it.Item().Key(), i.endKey) >= 0 {
		i.hasValue = false
		return false
	}
	i.hasValue = true
	return true
}

// Key returns the current key with the table prefix stripped.
func (i *memoryIterator) Key() []byte {
	if !i.hasValue {
		return nil
	}
	key := i.it.Item().Key()
	if len(key) > len(i.prefix) {
		return key[len(i.prefix):]
	}
	return nil
}

func (i *memoryIterator) Value() ([]byte, error) {
	if !i.hasValue {
		return nil, store.ErrNotFound
	}
	var value []byte
	if err := i.it.Item().Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	}); err != nil {
		return nil, err
	}
	return value, nil
}

func (i *memoryIterator) Close() error {
	i.it.Close()
	return nil
}
