package store

import "github.com/dgraph-io/badger/v4"

// PutRaw writes v under key, bypassing encoding.
func (s *Store) PutRaw(key string, v []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), v)
	})
}
