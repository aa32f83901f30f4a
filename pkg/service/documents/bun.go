//    Copyright 2026 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package documents

import (
	"context"
	"database/sql"
	"time"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const bunStoreType = "sqlite"

// BunStore keeps documents in a single SQL table.
type BunStore struct {
	db *bun.DB
}

var _ Store = &BunStore{}

// OpenBunStore opens (or creates) the SQLite database at given path.
// Use ":memory:" for a private in-memory database.
func OpenBunStore(ctx context.Context, path string) (*BunStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database '%s'", path)
	}
	if path == ":memory:" {
		// Every connection would get its own database
		sqldb.SetMaxOpenConns(1)
	}
	s, err := NewBunStore(ctx, bun.NewDB(sqldb, sqlitedialect.New()))
	if err != nil {
		sqldb.Close()
		return nil, err
	}
	return s, nil
}

// NewBunStore creates a store on the given database,
// creating its table when needed.
func NewBunStore(ctx context.Context, db *bun.DB) (*BunStore, error) {
	s := &BunStore{
		db: db,
	}
	_, err := db.NewCreateTable().
		Model((*document)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create documents table")
	}
	return s, nil
}

// Find the document with given id in given collection.
func (s *BunStore) Find(ctx context.Context, collection, id string) (Document, error) {
	row := new(document)
	err := s.db.NewSelect().
		Model(row).
		Where("collection = ?", collection).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			err = notFound(collection, id)
		} else {
			err = errors.Wrap(err, "failed to get document")
		}
		countOperation(bunStoreType, "find", err)
		return nil, err
	}
	var rec Record
	if err := copier.Copy(&rec, row); err != nil {
		err = errors.Wrap(err, "failed to copy document row")
		countOperation(bunStoreType, "find", err)
		return nil, err
	}
	doc, err := decode(rec)
	countOperation(bunStoreType, "find", err)
	return doc, err
}

// Save the given document in given collection.
func (s *BunStore) Save(ctx context.Context, collection string, doc Document) (string, error) {
	rec, err := encode(collection, doc)
	if err != nil {
		countOperation(bunStoreType, "save", err)
		return "", err
	}
	row := new(document)
	if err := copier.Copy(row, &rec); err != nil {
		err = errors.Wrap(err, "failed to copy document record")
		countOperation(bunStoreType, "save", err)
		return "", err
	}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (collection, id) DO UPDATE").
		Set("body = EXCLUDED.body").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to save document")
		countOperation(bunStoreType, "save", err)
		return "", err
	}
	countOperation(bunStoreType, "save", nil)
	return rec.ID, nil
}

// Count the number of documents in given collection.
func (s *BunStore) Count(ctx context.Context, collection string) (int64, error) {
	n, err := s.db.NewSelect().
		Model((*document)(nil)).
		Where("collection = ?", collection).
		Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count documents")
	}
	return int64(n), nil
}

// Close the database.
func (s *BunStore) Close() error {
	return maskAny(s.db.Close())
}

type document struct {
	bun.BaseModel `bun:"table:documents"`

	Collection string    `bun:",pk"`
	ID         string    `bun:",pk"`
	Body       []byte    `bun:",notnull"`
	UpdatedAt  time.Time `bun:",notnull"`
}
