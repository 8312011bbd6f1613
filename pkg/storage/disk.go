package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dgraph-io/badger/v3"

	"micrositepilot/pkg/models"
)

var ErrSiteNotFound = fmt.Errorf("site not found")

// SiteRegistry is the durable index of generated microsites: which
// file each was written to and how its deployment went. It outlives
// the per-process job state.
type SiteRegistry interface {
	PutSite(record *models.SiteRecord) error
	GetSite(id string) (*models.SiteRecord, error)
	ListSites() ([]*models.SiteRecord, error)
	Close() error
}

type siteRegistry struct {
	db *badger.DB
}

func NewSiteRegistry(path string) (SiteRegistry, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(path, "badger"))
	opts.Logger = nil // badger's own logging is noisy

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &siteRegistry{db: db}, nil
}

func (s *siteRegistry) PutSite(record *models.SiteRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal site record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(record.ID), data)
	})
}

func (s *siteRegistry) GetSite(id string) (*models.SiteRecord, error) {
	var record models.SiteRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, ErrSiteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site record: %w", err)
	}
	return &record, nil
}

func (s *siteRegistry) ListSites() ([]*models.SiteRecord, error) {
	var records []*models.SiteRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record models.SiteRecord
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				records = append(records, &record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list site records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (s *siteRegistry) Close() error {
	return s.db.Close()
}
