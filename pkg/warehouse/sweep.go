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
package warehouse

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/teradata-labs/weft/internal/log"
)

// Sweeper deletes Parquet artifacts older than a fixed age on a periodic
// schedule. Eviction is purely age-based with no reference counting: an
// analysis referencing a handle older than the TTL may race the sweep and
// fail with a missing-file error, which the sandbox reports as a contained
// failure.
type Sweeper struct {
	dir  string
	ttl  time.Duration
	cron *cron.Cron
}

// NewSweeper creates a sweeper over the artifact directory. A zero ttl
// defaults to one hour.
func NewSweeper(dir string, ttl time.Duration) *Sweeper {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Sweeper{dir: dir, ttl: ttl, cron: cron.New()}
}

// Start schedules the sweep at the given interval and runs it until Stop.
func (s *Sweeper) Start(every time.Duration) error {
	if every <= 0 {
		every = 10 * time.Minute
	}
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", every), func() {
		removed, err := s.SweepOnce()
		if err != nil {
			log.Warn("artifact sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			log.Info("artifact sweep", zap.Int("removed", removed))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule. In-flight sweeps run to completion.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// SweepOnce deletes every Parquet artifact whose modification time is older
// than the TTL and returns how many files were removed.
func (s *Sweeper) SweepOnce() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "query_*.parquet"))
	if err != nil {
		return 0, fmt.Errorf("glob artifacts: %w", err)
	}
	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
