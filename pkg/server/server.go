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

package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service"
	"github.com/binkynet/LocalCloudlet/pkg/service/devices"
	"github.com/binkynet/LocalCloudlet/pkg/service/documents"
)

const healthCheckInterval = time.Second

// Config for the HTTP server.
type Config struct {
	// Host interface to listen on
	Host string
	// Port to listen on for HTTP requests
	HTTPPort int
	// Port to listen on for GRPC requests (0 disables GRPC)
	GRPCPort int
	// Port to listen on for SSH requests (0 disables SSH)
	SSHPort int
	// Path of the SSH host key, created when missing
	SSHHostKeyPath string
}

// UI creates the terminal dashboard for an SSH session.
type UI interface {
	Handler(s ssh.Session) (tea.Model, []tea.ProgramOption)
}

// Service is the API exposed by the servers.
type Service interface {
	// FindOne looks up a single document.
	FindOne(ctx context.Context, req model.LookupRequest) (documents.Document, error)
	// SaveDocument saves a document in given collection.
	SaveDocument(ctx context.Context, collection string, doc documents.Document) (string, error)
	// CountDocuments returns the number of documents in given collection.
	CountDocuments(ctx context.Context, collection string) (int64, error)
	// Pins returns information about all used pins.
	Pins() ([]devices.PinInfo, error)
	// GetPinState returns the state of the pin at given address.
	GetPinState(addr model.PinAddress) (model.PinState, error)
	// ExecutePin executes the given pin command.
	ExecutePin(ctx context.Context, cmd model.PinCommand) error
	// IsServing returns true while the pin provider is open.
	IsServing() bool
	// Status returns the current status of the service.
	Status() service.Status
}

// Server runs the HTTP & GRPC servers for the service.
type Server struct {
	Config
	log     zerolog.Logger
	service Service
	ui      UI
	health  *health.Server
}

// New configures a new Server.
// The SSH dashboard is only served when ui is not nil.
func New(cfg Config, log zerolog.Logger, service Service, ui UI) (*Server, error) {
	return &Server{
		Config:  cfg,
		log:     log.With().Str("component", "server").Logger(),
		service: service,
		ui:      ui,
		health:  health.NewServer(),
	}, nil
}

// Run the server until the given context is canceled.
func (s *Server) Run(ctx context.Context) error {
	// Prepare HTTP listener
	log := s.log
	httpAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.HTTPPort))
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on address %s", httpAddr)
	}

	// Prepare HTTP server
	httpSrv := http.Server{
		Handler: s.Handler(),
	}

	// Prepare GRPC server
	var grpcSrv *grpc.Server
	var grpcLis net.Listener
	grpcAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.GRPCPort))
	if s.GRPCPort > 0 {
		grpcLis, err = net.Listen("tcp", grpcAddr)
		if err != nil {
			httpLis.Close()
			return errors.Wrapf(err, "failed to listen on address %s", grpcAddr)
		}
		grpcSrv = grpc.NewServer(
			grpc.StreamInterceptor(grpc_prometheus.StreamServerInterceptor),
			grpc.UnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
		)
		healthpb.RegisterHealthServer(grpcSrv, s.health)
		// Register reflection service on gRPC server.
		reflection.Register(grpcSrv)
		grpc_prometheus.Register(grpcSrv)
	}

	// Prepare SSH server
	var sshSrv *ssh.Server
	var sshLis net.Listener
	sshAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.SSHPort))
	if s.SSHPort > 0 && s.ui != nil {
		sshSrv, err = s.newSSHServer(sshAddr)
		if err == nil {
			sshLis, err = net.Listen("tcp", sshAddr)
		}
		if err != nil {
			httpLis.Close()
			if grpcLis != nil {
				grpcLis.Close()
			}
			return errors.Wrapf(err, "failed to prepare SSH server on address %s", sshAddr)
		}
	}

	// Serve apis
	errs := make(chan error, 3)
	log.Debug().Str("address", httpAddr).Msg("Serving HTTP")
	go func() {
		if err := httpSrv.Serve(httpLis); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
		log.Debug().Str("address", httpAddr).Msg("Done Serving HTTP")
	}()
	if grpcSrv != nil {
		log.Debug().Str("address", grpcAddr).Msg("Serving GRPC")
		go func() {
			if err := grpcSrv.Serve(grpcLis); err != nil {
				errs <- err
			}
			log.Debug().Str("address", grpcAddr).Msg("Done Serving GRPC")
		}()
	}
	if sshSrv != nil {
		log.Debug().Str("address", sshAddr).Msg("Serving SSH")
		go func() {
			if err := sshSrv.Serve(sshLis); err != nil && err != ssh.ErrServerClosed {
				errs <- err
			}
			log.Debug().Str("address", sshAddr).Msg("Done Serving SSH")
		}()
	}

	// Wait until context closed
	var result error
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()
	s.UpdateHealth()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-errs:
			log.Error().Err(err).Msg("Server failed")
			result = err
			break loop
		case <-ticker.C:
			s.UpdateHealth()
		}
	}

	log.Info().Msg("Closing servers")
	s.health.Shutdown()
	httpSrv.Shutdown(context.Background())
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if sshSrv != nil {
		sshSrv.Shutdown(context.Background())
	}
	return result
}

// newSSHServer creates the SSH server that serves the dashboard.
func (s *Server) newSSHServer(addr string) (*ssh.Server, error) {
	keyPath := s.SSHHostKeyPath
	if keyPath == "" {
		keyPath = ".ssh/id_ed25519"
	}
	srv, err := wish.NewServer(
		wish.WithAddress(addr),
		// Creates a keypair when it does not exist yet
		wish.WithHostKeyPath(keyPath),
		// The last item in the chain is the first to be called.
		wish.WithMiddleware(
			bubbletea.Middleware(s.ui.Handler),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "could not create SSH server")
	}
	return srv, nil
}

// UpdateHealth sets the GRPC health status from the service.
func (s *Server) UpdateHealth() {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.service.IsServing() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	api := e.Group("/api")
	api.GET("/document/findOne/:collection/:id", s.handleFindOne)
	api.POST("/document/save/:collection", s.handleSave)
	api.GET("/document/count/:collection", s.handleCount)
	api.GET("/pins", s.handleListPins)
	api.GET("/pins/:pin", s.handleGetPin)
	api.PUT("/pins/:pin", s.handlePutPin)
	api.GET("/status", s.handleStatus)
	return e
}
