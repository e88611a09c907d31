package kv

import (
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// bucketName is the bucket holding all the entries.
const bucketName = "checkbook"

// Bolt is a backend stored in a bbolt database file.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens, or creates, the database at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketName)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Load returns all the entries.
func (b *Bolt) Load() (map[string][]byte, error) {
	entries := make(map[string][]byte)
	err := b.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket([]byte(bucketName))
		if bk == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}
		return bk.ForEach(func(k, v []byte) error {
			// values are only valid during the transaction.
			entries[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Save replaces all the entries in a single transaction.
func (b *Bolt) Save(entries map[string][]byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to reset bucket %s: %w", bucketName, err)
		}
		bk, err := tx.CreateBucket([]byte(bucketName))
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
		}
		for k, v := range entries {
			if err := bk.Put([]byte(k), v); err != nil {
				return fmt.Errorf("failed to put %s: %w", k, err)
			}
		}
		return nil
	})
}
