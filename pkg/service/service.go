//    Copyright 2017-2026 Ewout Prangsma
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

package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service/bridge"
	"github.com/binkynet/LocalCloudlet/pkg/service/devices"
	"github.com/binkynet/LocalCloudlet/pkg/service/dispatch"
	"github.com/binkynet/LocalCloudlet/pkg/service/documents"
	"github.com/binkynet/LocalCloudlet/pkg/service/history"
)

type Config struct {
	model.Config
	ProgramVersion string
	HostID         string // Only used if not empty
}

type Dependencies struct {
	Logger zerolog.Logger
	Bridge bridge.API
	// Store is used instead of the configured store when set.
	Store documents.Store
}

// Status describes the current state of the service.
type Status struct {
	HostID         string    `json:"host_id"`
	ProgramVersion string    `json:"version"`
	StartedAt      time.Time `json:"started_at"`
	Uptime         string    `json:"uptime"`
	ProviderType   string    `json:"provider_type"`
	ProviderOpen   bool      `json:"provider_open"`
	PinCount       int       `json:"pin_count"`
	StoreType      string    `json:"store_type"`
}

// Service ties the pin provider, document store, dispatcher
// and history recorder together.
type Service struct {
	Config
	log        zerolog.Logger
	hostID     string
	startedAt  time.Time
	bridge     bridge.API
	provider   *devices.Provider
	store      documents.Store
	dispatcher *dispatch.Dispatcher
	recorder   *history.Recorder

	mutex         sync.Mutex
	closed        bool
	detachHistory context.CancelFunc
}

// NewService creates a Service instance and returns it.
func NewService(ctx context.Context, conf Config, deps Dependencies) (*Service, error) {
	hostID := conf.HostID
	if hostID == "" {
		var err error
		hostID, err = createHostID()
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create host ID")
		}
	}
	log := deps.Logger.With().Str("component", "service").Str("host-id", hostID).Logger()

	store := deps.Store
	if store == nil {
		var err error
		store, err = documents.NewStore(ctx, conf.Store, deps.Logger)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create document store")
		}
	}
	provider := devices.NewProvider(deps.Bridge, conf.Provider.ActiveLow, deps.Logger)
	s := &Service{
		Config:     conf,
		log:        log,
		hostID:     hostID,
		startedAt:  time.Now(),
		bridge:     deps.Bridge,
		provider:   provider,
		store:      store,
		dispatcher: dispatch.New(provider, store, deps.Logger),
	}
	if conf.History.Enabled {
		recorder, err := history.NewRecorder(conf.History, hostID, deps.Logger)
		if err != nil {
			store.Close()
			return nil, errors.Wrap(err, "Failed to create history recorder")
		}
		s.recorder = recorder
		s.detachHistory = recorder.Attach(provider)
	}
	if err := s.seed(ctx); err != nil {
		s.Close(ctx)
		return nil, err
	}
	return s, nil
}

// seed saves the configured documents into the store.
func (s *Service) seed(ctx context.Context) error {
	collections := make([]string, 0, len(s.Seed))
	for c := range s.Seed {
		collections = append(collections, c)
	}
	sort.Strings(collections)
	for _, collection := range collections {
		for _, doc := range s.Seed[collection] {
			if _, err := s.store.Save(ctx, collection, documents.Document(doc)); err != nil {
				return errors.Wrapf(err, "Failed to seed collection '%s'", collection)
			}
			seededDocumentsTotal.WithLabelValues(collection).Inc()
		}
		s.log.Debug().
			Str("collection", collection).
			Int("count", len(s.Seed[collection])).
			Msg("Seeded collection")
	}
	return nil
}

// Run the service until the given context is canceled.
// All resources are released before returning.
func (s *Service) Run(ctx context.Context) error {
	log := s.log
	log.Info().
		Str("provider", string(s.Provider.Type)).
		Str("store", string(s.Store.Type)).
		Int("pins", s.provider.PinCount()).
		Msg("Started service")
	s.bridge.BlinkGreenLED(time.Millisecond * 250)
	s.bridge.SetRedLED(false)

	go s.provider.Run(ctx)
	s.bridge.SetGreenLED(true)

	<-ctx.Done()
	log.Info().Msg("Stopping service")
	return s.Close(context.Background())
}

// Close releases all resources of the service.
// Calling Close more than once is allowed.
func (s *Service) Close(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var ae aerr.AggregateError
	if s.detachHistory != nil {
		s.detachHistory()
	}
	if err := s.provider.Shutdown(ctx); err != nil {
		ae.Add(err)
	}
	if err := s.store.Close(); err != nil {
		ae.Add(errors.Wrap(err, "close store"))
	}
	if s.recorder != nil {
		s.recorder.Close()
	}
	return ae.AsError()
}

// PinProvider returns the pin provider of the service.
func (s *Service) PinProvider() *devices.Provider {
	return s.provider
}

// Dispatcher returns the message dispatcher of the service.
func (s *Service) Dispatcher() *dispatch.Dispatcher {
	return s.dispatcher
}

// FindOne looks up a single document.
func (s *Service) FindOne(ctx context.Context, req model.LookupRequest) (documents.Document, error) {
	return s.dispatcher.FindOne(ctx, req)
}

// SaveDocument saves a document in given collection.
func (s *Service) SaveDocument(ctx context.Context, collection string, doc documents.Document) (string, error) {
	return s.store.Save(ctx, collection, doc)
}

// CountDocuments returns the number of documents in given collection.
func (s *Service) CountDocuments(ctx context.Context, collection string) (int64, error) {
	if collection == "" {
		return 0, model.InvalidArgument("collection is empty")
	}
	return s.store.Count(ctx, collection)
}

// Pins returns information about all used pins.
func (s *Service) Pins() ([]devices.PinInfo, error) {
	return s.provider.Pins()
}

// GetPinState returns the state of the pin at given address.
func (s *Service) GetPinState(addr model.PinAddress) (model.PinState, error) {
	return s.provider.GetState(addr)
}

// ExecutePin executes the given pin command.
func (s *Service) ExecutePin(ctx context.Context, cmd model.PinCommand) error {
	return s.provider.Execute(ctx, cmd)
}

// IsServing returns true while the pin provider is open.
func (s *Service) IsServing() bool {
	return !s.provider.IsClosed()
}

// Status returns the current status of the service.
func (s *Service) Status() Status {
	return Status{
		HostID:         s.hostID,
		ProgramVersion: s.ProgramVersion,
		StartedAt:      s.startedAt,
		Uptime:         humanize.RelTime(s.startedAt, time.Now(), "", ""),
		ProviderType:   string(s.Provider.Type),
		ProviderOpen:   !s.provider.IsClosed(),
		PinCount:       s.provider.PinCount(),
		StoreType:      string(s.Store.Type),
	}
}
