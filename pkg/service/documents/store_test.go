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
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/LocalCloudlet/model"
)

// runStoreContract checks the behavior every Store must have.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("FindMissing", func(t *testing.T) {
		_, err := s.Find(ctx, "users", "nobody")
		assert.True(t, model.IsNotFound(err))
	})

	t.Run("SaveWithID", func(t *testing.T) {
		id, err := s.Save(ctx, "users", Document{"id": "u1", "name": "alice"})
		require.NoError(t, err)
		assert.Equal(t, "u1", id)

		doc, err := s.Find(ctx, "users", "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", doc.ID())
		assert.Equal(t, "alice", doc["name"])
	})

	t.Run("SaveAssignsID", func(t *testing.T) {
		input := Document{"name": "bob"}
		id, err := s.Save(ctx, "users", input)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Empty(t, input.ID(), "input document must not be modified")

		doc, err := s.Find(ctx, "users", id)
		require.NoError(t, err)
		assert.Equal(t, id, doc.ID())
		assert.Equal(t, "bob", doc["name"])
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		_, err := s.Save(ctx, "users", Document{"id": "u2", "name": "carol"})
		require.NoError(t, err)
		_, err = s.Save(ctx, "users", Document{"id": "u2", "name": "dave"})
		require.NoError(t, err)

		doc, err := s.Find(ctx, "users", "u2")
		require.NoError(t, err)
		assert.Equal(t, "dave", doc["name"])
	})

	t.Run("CollectionsAreSeparate", func(t *testing.T) {
		_, err := s.Save(ctx, "orders", Document{"id": "u1", "total": 12.5})
		require.NoError(t, err)

		doc, err := s.Find(ctx, "users", "u1")
		require.NoError(t, err)
		assert.Equal(t, "alice", doc["name"])
		doc, err = s.Find(ctx, "orders", "u1")
		require.NoError(t, err)
		assert.Equal(t, 12.5, doc["total"])
	})

	t.Run("SaveNumericID", func(t *testing.T) {
		id, err := s.Save(ctx, "items", Document{"id": 42, "name": "bolt"})
		require.NoError(t, err)
		assert.Equal(t, "42", id)

		doc, err := s.Find(ctx, "items", "42")
		require.NoError(t, err)
		assert.Equal(t, 42.0, doc["id"], "numeric id must be kept")
		assert.Equal(t, "bolt", doc["name"])
	})

	t.Run("SaveInvalidID", func(t *testing.T) {
		_, err := s.Save(ctx, "items", Document{"id": true})
		assert.True(t, model.IsInvalidArgument(err))
		_, err = s.Save(ctx, "items", Document{"id": map[string]interface{}{"a": 1}})
		assert.True(t, model.IsInvalidArgument(err))
	})

	t.Run("Count", func(t *testing.T) {
		n, err := s.Count(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		n, err = s.Count(ctx, "empty")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("EmptyCollection", func(t *testing.T) {
		_, err := s.Save(ctx, "", Document{"name": "x"})
		assert.True(t, model.IsInvalidArgument(err))
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	runStoreContract(t, s)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	s := NewRedisStoreFromClient(client, WithPrefix("test:"))
	defer s.Close()
	require.NoError(t, s.Ping(context.Background()))
	runStoreContract(t, s)

	assert.True(t, mr.Exists("test:users"))
}

func TestBunStore(t *testing.T) {
	s, err := OpenBunStore(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	runStoreContract(t, s)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, model.StoreConfig{Type: model.StoreTypeMemory}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(ctx, model.StoreConfig{Type: model.StoreTypeSQLite, Path: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &BunStore{}, s)
	s.Close()

	_, err = NewStore(ctx, model.StoreConfig{Type: "mongo"}, zerolog.Nop())
	assert.True(t, model.IsInvalidArgument(err))
}
