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
	"sync"
)

const memoryStoreType = "memory"

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mutex       sync.RWMutex
	collections map[string]map[string]Record
}

var _ Store = &MemoryStore{}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Record),
	}
}

// Find the document with given id in given collection.
func (s *MemoryStore) Find(ctx context.Context, collection, id string) (Document, error) {
	s.mutex.RLock()
	rec, found := s.collections[collection][id]
	s.mutex.RUnlock()
	if !found {
		err := notFound(collection, id)
		countOperation(memoryStoreType, "find", err)
		return nil, err
	}
	doc, err := decode(rec)
	countOperation(memoryStoreType, "find", err)
	return doc, err
}

// Save the given document in given collection.
func (s *MemoryStore) Save(ctx context.Context, collection string, doc Document) (string, error) {
	rec, err := encode(collection, doc)
	if err != nil {
		countOperation(memoryStoreType, "save", err)
		return "", err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	c, found := s.collections[collection]
	if !found {
		c = make(map[string]Record)
		s.collections[collection] = c
	}
	c[rec.ID] = rec
	countOperation(memoryStoreType, "save", nil)
	return rec.ID, nil
}

// Count the number of documents in given collection.
func (s *MemoryStore) Count(ctx context.Context, collection string) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return int64(len(s.collections[collection])), nil
}

// Close releases all documents.
func (s *MemoryStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.collections = make(map[string]map[string]Record)
	return nil
}
