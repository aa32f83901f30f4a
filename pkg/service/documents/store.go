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
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/LocalCloudlet/model"
)

// IDField is the name of the document field that holds its id.
const IDField = "id"

var (
	maskAny = errors.WithStack
)

// Document is a schemaless JSON document.
type Document map[string]interface{}

// ID returns the id of the document (if any).
// Numeric ids are formatted as decimal strings.
func (d Document) ID() string {
	id, _ := formatID(d[IDField])
	return id
}

// formatID converts an id field value into its string form.
// Returns false for values that cannot serve as id.
func formatID(v interface{}) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", true
	case string:
		return id, true
	case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return fmt.Sprint(id), true
	default:
		return "", false
	}
}

// Store contains the API that is supported by all document stores.
type Store interface {
	// Find the document with given id in given collection.
	// Returns NotFoundError if no such document exists.
	Find(ctx context.Context, collection, id string) (Document, error)
	// Save the given document in given collection.
	// If the document has no id, a new one is assigned.
	// Returns the id of the saved document.
	Save(ctx context.Context, collection string, doc Document) (string, error)
	// Count the number of documents in given collection.
	Count(ctx context.Context, collection string) (int64, error)
	// Close releases all resources of the store.
	Close() error
}

// Record is the stored form of a document.
type Record struct {
	Collection string
	ID         string
	Body       []byte
	UpdatedAt  time.Time
}

// NewID returns a new unique document id.
func NewID() string {
	return uuid.NewString()
}

// NewStore creates a document store for the given configuration.
func NewStore(ctx context.Context, cfg model.StoreConfig, log zerolog.Logger) (Store, error) {
	log = log.With().Str("component", "document-store").Str("type", string(cfg.Type)).Logger()
	switch cfg.Type {
	case model.StoreTypeMemory, "":
		return NewMemoryStore(), nil
	case model.StoreTypeRedis:
		opts := []Option{}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, WithPrefix(cfg.Redis.Prefix))
		}
		s := NewRedisStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := s.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("address", cfg.Redis.Address).Msg("Redis is not reachable yet")
		}
		return s, nil
	case model.StoreTypeSQLite:
		return OpenBunStore(ctx, cfg.Path)
	default:
		return nil, model.InvalidArgument("unknown store type '%s'", string(cfg.Type))
	}
}

// encode prepares a document for storage, assigning an id when needed.
func encode(collection string, doc Document) (Record, error) {
	if collection == "" {
		return Record{}, model.InvalidArgument("collection is empty")
	}
	id, ok := formatID(doc[IDField])
	if !ok {
		return Record{}, model.InvalidArgument("document id must be a string or number, got %T", doc[IDField])
	}
	stored := make(Document, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	if id == "" {
		id = NewID()
		stored[IDField] = id
	}
	body, err := json.Marshal(stored)
	if err != nil {
		return Record{}, errors.Wrapf(model.InvalidArgumentError, "cannot encode document: %v", err)
	}
	return Record{
		Collection: collection,
		ID:         id,
		Body:       body,
		UpdatedAt:  time.Now(),
	}, nil
}

// decode converts a stored record back into a document.
func decode(rec Record) (Document, error) {
	var doc Document
	if err := json.Unmarshal(rec.Body, &doc); err != nil {
		return nil, errors.Wrapf(err, "corrupt document %s/%s", rec.Collection, rec.ID)
	}
	return doc, nil
}

// notFound creates a NotFoundError for the given document.
func notFound(collection, id string) error {
	return model.NotFound("document '%s' in collection '%s'", id, collection)
}
