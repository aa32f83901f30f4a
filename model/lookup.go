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

// LookupRequest describes the lookup of exactly one document
// by its ID within a named collection.
// Values are immutable and comparable; two requests with the same
// collection and ID are interchangeable.
type LookupRequest struct {
	collection string
	id         string
}

// NewLookupRequest creates a request for the document with given ID
// in given collection.
// Construction never fails; use Validate for stricter checking.
func NewLookupRequest(collection, id string) LookupRequest {
	return LookupRequest{
		collection: collection,
		id:         id,
	}
}

// Collection returns the name of the collection to search in.
func (r LookupRequest) Collection() string {
	return r.collection
}

// ID returns the ID of the requested document.
func (r LookupRequest) ID() string {
	return r.id
}

// Validate the given request, returning nil on ok,
// or an InvalidArgumentError when the collection or ID is empty.
func (r LookupRequest) Validate() error {
	if r.collection == "" {
		return InvalidArgument("collection is empty")
	}
	if r.id == "" {
		return InvalidArgument("id is empty in collection '%s'", r.collection)
	}
	return nil
}

// String returns a human readable form of the request.
func (r LookupRequest) String() string {
	return r.collection + "/" + r.id
}
