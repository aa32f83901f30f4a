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

package dispatch

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service/documents"
)

const (
	opFindOne = "findOne"
	opSave    = "save"
	opCount   = "count"
)

// FindOne resolves the given lookup request against the document store.
// Returns NotFoundError when the document does not exist.
func (d *Dispatcher) FindOne(ctx context.Context, req model.LookupRequest) (documents.Document, error) {
	if err := req.Validate(); err != nil {
		lookupsTotal.WithLabelValues(req.Collection(), resultLabel(err)).Inc()
		return nil, err
	}
	if d.store == nil {
		return nil, errors.Wrap(model.InvalidArgumentError, "no document store configured")
	}
	doc, err := d.store.Find(ctx, req.Collection(), req.ID())
	lookupsTotal.WithLabelValues(req.Collection(), resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	d.log.Debug().Str("lookup", req.String()).Msg("Found document")
	return doc, nil
}

// documentEndpoint performs document operations:
//
//	document://findOne?collection=users&id=42  sets the body to the document
//	document://save?collection=users           saves the body, sets HeaderDocumentID
//	document://count?collection=users          sets the body to the count
type documentEndpoint struct {
	dispatcher *Dispatcher
	op         string
	collection string
	id         string
}

func newDocumentEndpoint(u *url.URL, d *Dispatcher) (*documentEndpoint, error) {
	q := u.Query()
	ep := &documentEndpoint{
		dispatcher: d,
		op:         hostOrOpaque(u),
		collection: q.Get("collection"),
		id:         q.Get("id"),
	}
	switch ep.op {
	case opFindOne, opSave, opCount:
	default:
		return nil, model.InvalidArgument("unknown document operation '%s'", ep.op)
	}
	if ep.collection == "" {
		return nil, model.InvalidArgument("document endpoint '%s' has no collection", u)
	}
	return ep, nil
}

// Process the given message.
func (e *documentEndpoint) Process(ctx context.Context, msg *Message) error {
	store := e.dispatcher.store
	switch e.op {
	case opFindOne:
		id := e.id
		if id == "" {
			id = msg.Header(HeaderDocumentID)
		}
		doc, err := e.dispatcher.FindOne(ctx, model.NewLookupRequest(e.collection, id))
		if err != nil {
			return err
		}
		msg.Body = doc
		msg.SetHeader(HeaderDocumentID, id)
	case opSave:
		doc, ok := msg.Body.(documents.Document)
		if !ok {
			if m, isMap := msg.Body.(map[string]interface{}); isMap {
				doc, ok = documents.Document(m), true
			}
		}
		if !ok {
			return model.InvalidArgument("message body of type %T is not a document", msg.Body)
		}
		id, err := store.Save(ctx, e.collection, doc)
		if err != nil {
			return err
		}
		msg.SetHeader(HeaderDocumentID, id)
	case opCount:
		n, err := store.Count(ctx, e.collection)
		if err != nil {
			return err
		}
		msg.Body = n
	}
	return nil
}
