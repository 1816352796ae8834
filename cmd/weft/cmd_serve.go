// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teradata-labs/weft/internal/log"
	"github.com/teradata-labs/weft/pkg/server"
	"github.com/teradata-labs/weft/pkg/warehouse"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the weft HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cfg, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Background retention: artifact files and idle sessions share the
	// sweep cadence but have independent TTLs.
	sweeper := warehouse.NewSweeper(cfg.Artifacts.Dir, time.Duration(cfg.Artifacts.TTLSeconds)*time.Second)
	if err := sweeper.Start(time.Duration(cfg.Artifacts.SweepIntervalSeconds) * time.Second); err != nil {
		return err
	}
	defer sweeper.Stop()

	evictor := cron.New()
	historyTTL := time.Duration(cfg.History.TTLSeconds) * time.Second
	_, err = evictor.AddFunc(fmt.Sprintf("@every %s", time.Duration(cfg.History.SweepIntervalSeconds)*time.Second), func() {
		n, err := rt.store.EvictExpired(context.Background(), historyTTL)
		if err != nil {
			log.Warn("session eviction failed", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("session eviction", zap.Int64("turns_removed", n))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule session eviction: %w", err)
	}
	evictor.Start()
	defer evictor.Stop()

	srv := server.New(rt.agent, server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
