package savestore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const saveBucket = "saves"

// Bolt is a bbolt-backed blob store, the default on-disk backend.
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the save database at path.
func OpenBolt(path string) (*Bolt, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("save path is required")
	}
	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open save db: %w", err)
	}
	store := &Bolt{db: db}
	if err := store.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (b *Bolt) ensureBucket() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(saveBucket)); err != nil {
			return fmt.Errorf("create save bucket: %w", err)
		}
		return nil
	})
}

func (b *Bolt) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b == nil || b.db == nil {
		return nil, fmt.Errorf("save storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("save key is required")
	}
	var payload []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(saveBucket))
		if bucket == nil {
			return fmt.Errorf("save bucket is missing")
		}
		stored := bucket.Get([]byte(key))
		if stored == nil {
			return ErrNotFound
		}
		payload = make([]byte, len(stored))
		copy(payload, stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (b *Bolt) Put(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil || b.db == nil {
		return fmt.Errorf("save storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("save key is required")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(saveBucket))
		if bucket == nil {
			return fmt.Errorf("save bucket is missing")
		}
		return bucket.Put([]byte(key), payload)
	})
}

func (b *Bolt) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil || b.db == nil {
		return fmt.Errorf("save storage is not configured")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(saveBucket))
		if bucket == nil {
			return fmt.Errorf("save bucket is missing")
		}
		return bucket.Delete([]byte(key))
	})
}

func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

var _ Store = (*Bolt)(nil)
