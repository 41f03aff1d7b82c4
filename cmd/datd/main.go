// Copyright 2026 The MeshDAT Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command datd runs a distributed address table node: it caches observed
// address mappings, replicates them to the candidates responsible for each
// address, answers queries from other nodes, and serves metrics and a
// diagnostics page over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meshproto/meshdat/dat"
	"github.com/meshproto/meshdat/pkg/log"
	"github.com/meshproto/meshdat/private/config"
	"github.com/meshproto/meshdat/private/mesh"
)

// version is set at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:           "datd",
		Short:         "Distributed address table daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configFile)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "TOML configuration file (required)")
	cmd.MarkFlagRequired("config")
	cmd.AddCommand(newSampleCmd(), newVersionCmd())
	return cmd
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample-config",
		Short: "Write a commented sample configuration to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg Config
			config.WriteSample(cmd.OutOrStdout(), &cfg)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the daemon version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "datd %s\n", version)
		},
	}
}

func run(ctx context.Context, configFile string) error {
	var cfg Config
	if err := config.LoadFile(configFile, &cfg); err != nil {
		return err
	}
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.Setup(cfg.Logging); err != nil {
		return err
	}
	defer log.HandlePanic()
	return realMain(ctx, &cfg)
}

func realMain(ctx context.Context, cfg *Config) error {
	topo, err := mesh.NewStatic(cfg.Topology.NodeInfos())
	if err != nil {
		return err
	}
	transport, err := mesh.NewUDPTransport(cfg.Transport.LocalAddr())
	if err != nil {
		return err
	}
	svc, err := dat.New(cfg.Table.TableConfig(), topo, transport, dat.NewMetrics())
	if err != nil {
		transport.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, errCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer log.HandlePanic()
		return transport.Serve(newHandler(svc, transport))
	})
	if cfg.Metrics.Prometheus != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/status", statusHandler(svc))
		mux.HandleFunc("/resolve", resolveHandler(svc))
		server := &http.Server{Addr: cfg.Metrics.Prometheus, Handler: mux}
		g.Go(func() error {
			defer log.HandlePanic()
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			defer log.HandlePanic()
			<-errCtx.Done()
			return server.Shutdown(context.Background())
		})
	}
	g.Go(func() error {
		defer log.HandlePanic()
		<-errCtx.Done()
		svc.Close()
		return transport.Close()
	})
	log.Root().Info("Daemon started",
		"version", version, "local", transport.LocalAddr())
	return g.Wait()
}

// newHandler processes table messages from other nodes. Puts are absorbed
// into the local table; a get is answered with a put back to the sender if
// the mapping is cached.
func newHandler(svc *dat.Service, transport *mesh.UDPTransport) mesh.Handler {
	logger := log.New("comp", "handler")
	return func(msg dat.Message, from netip.AddrPort) {
		switch msg.Kind {
		case dat.KindPut:
			addr, link, err := decodeMapping(msg.Payload)
			if err != nil {
				logger.Debug("Dropping malformed put", "from", from, "err", err)
				return
			}
			svc.Observe(addr, link)
		case dat.KindGet:
			addr, err := decodeQuery(msg.Payload)
			if err != nil {
				logger.Debug("Dropping malformed get", "from", from, "err", err)
				return
			}
			entry, ok := svc.Lookup(addr)
			if !ok {
				return
			}
			reply := dat.Message{
				Kind:    dat.KindPut,
				Payload: encodeMapping(entry.Addr, entry.Link),
			}
			if err := transport.Send(context.Background(), reply, from); err != nil {
				logger.Debug("Answering query failed", "to", from, "err", err)
			}
		}
	}
}
