package kvdb

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// KVStorage is a minimal ordered key-value store
type KVStorage interface {
	Set(k []byte, v []byte) error
	Get(k []byte) ([]byte, bool, error)
	// Iterate calls fn for every key with the given prefix, in key order.
	// Returning false from fn stops the iteration.
	Iterate(prefix []byte, fn func(k, v []byte) bool) error
	Close() error
}

// levelDBKV is the leveldb implementation of the kv storage
type levelDBKV struct {
	db *leveldb.DB
}

// Set sets the key-value pair in leveldb storage
func (l *levelDBKV) Set(k []byte, v []byte) error {
	return l.db.Put(k, v, nil)
}

// Get retrieves the key-value pair in leveldb storage
func (l *levelDBKV) Get(k []byte) ([]byte, bool, error) {
	data, err := l.db.Get(k, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return data, true, nil
}

func (l *levelDBKV) Iterate(prefix []byte, fn func(k, v []byte) bool) error {
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {
		// iterator buffers are reused between calls
		k := append([]byte(nil), iter.Key()...)
		v := append([]byte(nil), iter.Value()...)

		if !fn(k, v) {
			break
		}
	}

	return iter.Error()
}

// Close closes the leveldb storage instance
func (l *levelDBKV) Close() error {
	return l.db.Close()
}
