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

	"github.com/pkg/errors"
	backend "github.com/redis/go-redis/v9"
)

const (
	redisStoreType     = "redis"
	defaultRedisPrefix = "cloudlet:documents:"
)

// RedisStore keeps every collection in a Redis hash,
// keyed by document id.
type RedisStore struct {
	client *backend.Client
	prefix string
}

var _ Store = &RedisStore{}

// Option configures a RedisStore.
type Option func(*RedisStore)

// WithPrefix sets the key prefix for collections.
func WithPrefix(prefix string) Option {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a new Redis store with options.
func NewRedisStore(address, password string, db int, opts ...Option) *RedisStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(rdb, opts...)
}

// NewRedisStoreFromClient creates a new Redis store from an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...Option) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(collection string) string {
	return s.prefix + collection
}

// Ping checks the connection to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "failed to ping redis")
	}
	return nil
}

// Find the document with given id in given collection.
func (s *RedisStore) Find(ctx context.Context, collection, id string) (Document, error) {
	val, err := s.client.HGet(ctx, s.key(collection), id).Bytes()
	if err != nil {
		if err == backend.Nil {
			err = notFound(collection, id)
		} else {
			err = errors.Wrap(err, "failed to get from redis")
		}
		countOperation(redisStoreType, "find", err)
		return nil, err
	}
	doc, err := decode(Record{Collection: collection, ID: id, Body: val})
	countOperation(redisStoreType, "find", err)
	return doc, err
}

// Save the given document in given collection.
func (s *RedisStore) Save(ctx context.Context, collection string, doc Document) (string, error) {
	rec, err := encode(collection, doc)
	if err != nil {
		countOperation(redisStoreType, "save", err)
		return "", err
	}
	if err := s.client.HSet(ctx, s.key(collection), rec.ID, rec.Body).Err(); err != nil {
		err = errors.Wrap(err, "failed to save to redis")
		countOperation(redisStoreType, "save", err)
		return "", err
	}
	countOperation(redisStoreType, "save", nil)
	return rec.ID, nil
}

// Count the number of documents in given collection.
func (s *RedisStore) Count(ctx context.Context, collection string) (int64, error) {
	n, err := s.client.HLen(ctx, s.key(collection)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count in redis")
	}
	return n, nil
}

// Close the connection to Redis.
func (s *RedisStore) Close() error {
	return maskAny(s.client.Close())
}
