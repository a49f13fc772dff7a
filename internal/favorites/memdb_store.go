package favorites

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
)

const valuesTable = "values"

type memValue struct {
	Key   string
	Value string
}

// MemDBStore keeps values in process memory. Contents are lost on restart.
type MemDBStore struct {
	db *memdb.MemDB
}

func NewMemDBStore() (*MemDBStore, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			valuesTable: {
				Name: valuesTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create memdb: %w", err)
	}
	return &MemDBStore{db: db}, nil
}

func (s *MemDBStore) Get(_ context.Context, key string) (string, bool, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(valuesTable, "id", key)
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if raw == nil {
		return "", false, nil
	}
	return raw.(*memValue).Value, true, nil
}

func (s *MemDBStore) Set(_ context.Context, key, value string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(valuesTable, &memValue{Key: key, Value: value}); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	txn.Commit()
	return nil
}

func (s *MemDBStore) Delete(_ context.Context, key string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(valuesTable, "id", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	txn.Commit()
	return nil
}

func (s *MemDBStore) Ping(context.Context) error { return nil }

func (s *MemDBStore) Close() error { return nil }
