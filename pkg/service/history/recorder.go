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

package history

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/metrics"
	"github.com/binkynet/LocalCloudlet/pkg/service/devices"
	"github.com/binkynet/LocalCloudlet/pkg/service/util"
)

const (
	// Measurement holding pin state changes
	measurementPinState = "pin_state"
	writeTimeout        = time.Second * 5
	subSystem           = "history"
)

var (
	// Total number of written history points per result
	pointsWrittenTotal = metrics.MustRegisterCounterVec(subSystem,
		"points_written_total",
		"Total number of written history points per result",
		"result")
)

// ChangeSource publishes pin state changes.
type ChangeSource interface {
	SubscribeChanges(cb func(devices.PinChange)) context.CancelFunc
}

// Recorder writes pin state changes into InfluxDB.
type Recorder struct {
	log      zerolog.Logger
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	host     string
}

// NewRecorder creates a recorder for the given configuration.
// host is added as tag to all points.
func NewRecorder(cfg model.HistoryConfig, host string, log zerolog.Logger) (*Recorder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPRequestTimeout(uint(writeTimeout.Seconds())))
	return &Recorder{
		log:      log.With().Str("component", "history").Logger(),
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		host:     host,
	}, nil
}

// Record writes a single pin state change.
// The point is stamped with the time the change was applied.
func (r *Recorder) Record(ctx context.Context, change devices.PinChange) error {
	at := change.At
	if at.IsZero() {
		at = time.Now()
	}
	p := influxdb2.NewPoint(measurementPinState,
		map[string]string{
			"host": r.host,
			"pin":  change.Address.String(),
		},
		map[string]interface{}{
			"state":    change.State.Bool(),
			"previous": change.Previous.Bool(),
		},
		at)
	if err := r.writeAPI.WritePoint(ctx, p); err != nil {
		pointsWrittenTotal.WithLabelValues("error").Inc()
		return errors.Wrap(err, "failed to write pin state point")
	}
	pointsWrittenTotal.WithLabelValues("ok").Inc()
	return nil
}

// Attach records every change published by the given source
// until the returned function is called.
func (r *Recorder) Attach(source ChangeSource) context.CancelFunc {
	return source.SubscribeChanges(func(change devices.PinChange) {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := util.Retry(ctx, r.log, "recording pin state", func() error {
			return r.Record(ctx, change)
		}); err != nil {
			r.log.Warn().Err(err).
				Str("pin", change.Address.String()).
				Msg("Failed to record pin state change")
		}
	})
}

// Close the connection to InfluxDB.
func (r *Recorder) Close() {
	r.client.Close()
}
