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
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/weft/pkg/history"
	"github.com/teradata-labs/weft/pkg/warehouse"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired parquet artifacts and idle sessions once",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	sweeper := warehouse.NewSweeper(cfg.Artifacts.Dir, time.Duration(cfg.Artifacts.TTLSeconds)*time.Second)
	removed, err := sweeper.SweepOnce()
	if err != nil {
		return err
	}
	fmt.Printf("artifacts removed: %d\n", removed)

	store, err := history.NewStore(cfg.History.Path, cfg.History.MaxTurns)
	if err != nil {
		return err
	}
	defer store.Close()

	turns, err := store.EvictExpired(cmd.Context(), time.Duration(cfg.History.TTLSeconds)*time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("history turns removed: %d\n", turns)
	return nil
}
