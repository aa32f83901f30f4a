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

package main

import (
	"context"
	"fmt"
	"os"

	terminate "github.com/pulcy/go-terminate"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/config"
	"github.com/binkynet/LocalCloudlet/pkg/environment"
	"github.com/binkynet/LocalCloudlet/pkg/logging"
	"github.com/binkynet/LocalCloudlet/pkg/server"
	"github.com/binkynet/LocalCloudlet/pkg/service"
	"github.com/binkynet/LocalCloudlet/pkg/service/bridge"
	"github.com/binkynet/LocalCloudlet/pkg/ui"
)

const (
	projectName  = "BinkyNet Local Cloudlet"
	autoProvider = "auto"
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
)

func main() {
	var configPath string
	var levelFlag string
	var providerType string
	var serverHost string
	var serverPort int
	var grpcPort int
	var sshPort int
	var hostID string

	pflag.StringVarP(&configPath, "config", "c", "", "Path of configuration file (.yaml|.toml)")
	pflag.StringVarP(&levelFlag, "level", "l", "", "Set log level (overrides configuration)")
	pflag.StringVarP(&providerType, "provider", "p", "", "Type of pin provider to use (virtual|rpi|mqtt|auto)")
	pflag.StringVar(&serverHost, "host", "", "Host address the servers will listen on")
	pflag.IntVar(&serverPort, "port", 0, "Port the HTTP server will listen on")
	pflag.IntVar(&grpcPort, "grpc-port", -1, "Port the GRPC server will listen on (0 disables GRPC)")
	pflag.IntVar(&sshPort, "ssh-port", -1, "Port the SSH dashboard will listen on (0 disables SSH)")
	pflag.StringVar(&hostID, "host-id", "", "Identifier of this host (defaults to a hash of the MAC addresses)")
	pflag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		Exitf("Failed to load configuration: %v\n", err)
	}
	if levelFlag != "" {
		cfg.Logging.Level = levelFlag
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort > 0 {
		cfg.Server.HTTPPort = serverPort
	}
	if grpcPort >= 0 {
		cfg.Server.GRPCPort = grpcPort
	}
	if sshPort >= 0 {
		cfg.Server.SSHPort = sshPort
	}

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())
	mqttLog := logging.NewMQTTWriter(ctx)
	logger, err := logging.New(cfg.Logging, mqttLog)
	if err != nil {
		Exitf("Failed to initialize logging: %v\n", err)
	}

	switch providerType {
	case "":
		// Use configured provider
	case autoProvider:
		cfg.Provider.Type = environment.AutoDetectProviderType(logger)
		logger.Info().Str("provider", string(cfg.Provider.Type)).Msg("Detected provider type")
	default:
		cfg.Provider.Type = model.ProviderType(providerType)
	}
	if err := cfg.Validate(); err != nil {
		Exitf("Invalid configuration: %v\n", err)
	}

	br, err := bridge.New(cfg.Provider, logger)
	if err != nil {
		Exitf("Failed to initialize bridge: %v\n", err)
	}

	if publisher, ok := br.(logging.Publisher); ok && cfg.Logging.MQTTTopic != "" {
		mqttLog.SetDestination(cfg.Logging.MQTTTopic, publisher)
	}

	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	svc, err := service.NewService(ctx, service.Config{
		Config:         cfg,
		ProgramVersion: projectVersion,
		HostID:         hostID,
	}, service.Dependencies{
		Logger: logger,
		Bridge: br,
	})
	if err != nil {
		br.Close()
		Exitf("Failed to initialize Service: %v\n", err)
	}

	httpServer, err := server.New(server.Config{
		Host:           cfg.Server.Host,
		HTTPPort:       cfg.Server.HTTPPort,
		GRPCPort:       cfg.Server.GRPCPort,
		SSHPort:        cfg.Server.SSHPort,
		SSHHostKeyPath: cfg.Server.SSHHostKeyPath,
	}, logger, svc, ui.NewDashboard(svc))
	if err != nil {
		Exitf("Failed to initialize Server: %v\n", err)
	}

	fmt.Printf("Starting %s (version %s build %s)\n", projectName, projectVersion, projectBuild)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	if err := g.Wait(); err != nil {
		Exitf("Service run failed: %v\n", err)
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
