// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRequestAccessors(t *testing.T) {
	cases := []struct{ collection, id string }{
		{"invoices", "1"},
		{"devices", "abc-def"},
		{"a", "ü-ñ"},
	}
	for _, c := range cases {
		r := NewLookupRequest(c.collection, c.id)
		for i := 0; i < 3; i++ {
			assert.Equal(t, c.collection, r.Collection())
			assert.Equal(t, c.id, r.ID())
		}
		assert.NoError(t, r.Validate())
	}
}

func TestLookupRequestEquality(t *testing.T) {
	a := NewLookupRequest("invoices", "42")
	b := NewLookupRequest("invoices", "42")
	c := NewLookupRequest("invoices", "43")
	assert.True(t, a == b)
	assert.False(t, a == c)

	seen := map[LookupRequest]int{a: 1}
	seen[b]++
	assert.Equal(t, 2, seen[a])
}

func TestLookupRequestValidate(t *testing.T) {
	err := NewLookupRequest("", "1").Validate()
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	err = NewLookupRequest("invoices", "").Validate()
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestLookupRequestConstructionNeverFails(t *testing.T) {
	r := NewLookupRequest("", "")
	assert.Equal(t, "", r.Collection())
	assert.Equal(t, "", r.ID())
	assert.Equal(t, "invoices/7", NewLookupRequest("invoices", "7").String())
}
