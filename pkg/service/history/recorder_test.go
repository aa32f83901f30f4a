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
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service/bridge"
	"github.com/binkynet/LocalCloudlet/pkg/service/devices"
)

// influxServer captures line protocol sent to the write endpoint.
type influxServer struct {
	*httptest.Server
	mutex sync.Mutex
	lines []string
	query []string
}

func newInfluxServer(t *testing.T) *influxServer {
	s := &influxServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/write" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		s.mutex.Lock()
		s.lines = append(s.lines, string(body))
		s.query = append(s.query, r.URL.RawQuery)
		s.mutex.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *influxServer) received() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.lines...)
}

func testConfig(url string) model.HistoryConfig {
	return model.HistoryConfig{
		Enabled: true,
		URL:     url,
		Token:   "token",
		Org:     "cloudlet",
		Bucket:  "pins",
	}
}

func TestRecorderRecord(t *testing.T) {
	srv := newInfluxServer(t)
	r, err := NewRecorder(testConfig(srv.URL), "worker1", zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Record(context.Background(), devices.PinChange{
		Address:  6,
		Previous: model.PinStateLow,
		State:    model.PinStateHigh,
	}))
	lines := srv.received()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "pin_state,host=worker1,pin=GPIO_06 ")
	assert.Contains(t, lines[0], "state=true")
	assert.Contains(t, lines[0], "previous=false")
	assert.Contains(t, srv.query[0], "bucket=pins")
}

func TestRecorderAttach(t *testing.T) {
	srv := newInfluxServer(t)
	r, err := NewRecorder(testConfig(srv.URL), "worker1", zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	provider := devices.NewProvider(bridge.NewVirtualBridge(8), false, zerolog.Nop())
	defer provider.Shutdown(context.Background())
	detach := r.Attach(provider)
	defer detach()

	require.NoError(t, provider.SetMode(context.Background(), 3, model.PinModeDigitalOutput))
	require.NoError(t, provider.ApplyAction(context.Background(), 3, model.PinStateHigh))

	assert.Eventually(t, func() bool {
		return len(srv.received()) == 1
	}, time.Second*2, time.Millisecond*10)
}

func TestRecorderUsesChangeTime(t *testing.T) {
	srv := newInfluxServer(t)
	r, err := NewRecorder(testConfig(srv.URL), "worker1", zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	high := time.Unix(1700000000, 100)
	low := high.Add(time.Millisecond)
	// Deliver the later change first
	require.NoError(t, r.Record(context.Background(), devices.PinChange{
		Address: 6, Previous: model.PinStateHigh, State: model.PinStateLow, At: low,
	}))
	require.NoError(t, r.Record(context.Background(), devices.PinChange{
		Address: 6, Previous: model.PinStateLow, State: model.PinStateHigh, At: high,
	}))

	lines := srv.received()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "state=false")
	assert.Contains(t, lines[0], " "+strconv.FormatInt(low.UnixNano(), 10))
	assert.Contains(t, lines[1], "state=true")
	assert.Contains(t, lines[1], " "+strconv.FormatInt(high.UnixNano(), 10))
}

func TestRecorderInvalidConfig(t *testing.T) {
	_, err := NewRecorder(model.HistoryConfig{Enabled: true}, "worker1", zerolog.Nop())
	assert.True(t, model.IsValidation(err))
}
