// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/forgelabs/payloadd/archive"
	"github.com/forgelabs/payloadd/consts"
	"github.com/forgelabs/payloadd/executor"
	"github.com/forgelabs/payloadd/job"
	"github.com/forgelabs/payloadd/mempool"
	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/rpc"
	"github.com/forgelabs/payloadd/scheduler"
	"github.com/forgelabs/payloadd/server"
	"github.com/forgelabs/payloadd/trace"
)

const (
	shutdownTimeout = 10 * time.Second
	poolSweep       = time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", consts.Name, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Stop()

	tracer, err := trace.New(&cfg.Trace)
	if err != nil {
		return err
	}

	pool := mempool.New[*payload.Transaction](
		tracer,
		cfg.MempoolSize,
		cfg.MempoolSponsorSize,
		cfg.ExemptSponsors,
	)
	gen := job.NewGreedyGenerator(
		log,
		tracer,
		executor.NewNative(),
		pool,
		&allocationSource{allocations: cfg.Allocations},
		cfg.Job,
	)

	var (
		arch *archive.Archive
		opts []scheduler.Option
	)
	if cfg.ArchiveEnabled {
		arch, err = archive.New(log, tracer, cfg.ArchiveDir, cfg.Archive)
		if err != nil {
			return err
		}
		defer func() {
			_ = arch.Close()
		}()
		opts = append(opts, scheduler.WithArchiver(arch))
	}

	sched, err := scheduler.New(log, tracer, gen, cfg.Scheduler, opts...)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort))
	if err != nil {
		return err
	}
	srv, err := server.New(
		log,
		listener,
		cfg.HTTP,
		cfg.AllowedOrigins,
		cfg.AllowedHosts,
		shutdownTimeout,
	)
	if err != nil {
		return err
	}

	b := &backend{
		tracer:  tracer,
		handle:  sched.Handle(),
		pool:    pool,
		archive: arch,
	}
	handler, err := rpc.NewJSONRPCHandler(rpc.Name, rpc.NewJSONRPCServer(b))
	if err != nil {
		return err
	}
	if err := srv.AddRoute(handler, rpc.JSONRPCEndpoint); err != nil {
		return err
	}

	gatherers := prometheus.Gatherers{sched.Metrics()}
	if arch != nil {
		gatherers = append(gatherers, arch.Metrics())
	}
	if err := srv.AddRoute(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}), "/metrics"); err != nil {
		return err
	}
	if err := srv.AddRoute(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), "/health"); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Dispatch()
	})
	g.Go(func() error {
		// Drop expired transactions so dead weight never reaches a job.
		t := time.NewTicker(poolSweep)
		defer t.Stop()
		for {
			select {
			case now := <-t.C:
				pool.SetMinTimestamp(gctx, now.UnixMilli())
			case <-gctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown()
	})

	log.Info("daemon running",
		zap.String("address", listener.Addr().String()),
		zap.String("version", consts.Version),
		zap.Bool("archive", arch != nil),
	)

	err = g.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
