// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sportarr/internal/config"
	"github.com/autobrr/sportarr/internal/domain"
	"github.com/autobrr/sportarr/internal/metrics"
	"github.com/autobrr/sportarr/internal/models"
	"github.com/autobrr/sportarr/internal/services/torznab"
)

const (
	defaultWarmUp   = 30 * time.Second
	defaultCooldown = 5 * time.Minute
)

// Scheduler is the outer acquisition loop: one RSS fetch per enabled
// indexer per cycle, sequential release processing, a clamped sleep between
// cycles, and a fixed cooldown after a cycle-fatal error. The scheduler
// itself never terminates except through context cancellation.
type Scheduler struct {
	cfg     *config.AppConfig
	engine  *Engine
	metrics *metrics.Manager

	warmUp   time.Duration
	cooldown time.Duration

	mu       sync.Mutex
	lastSync time.Time
}

func NewScheduler(cfg *config.AppConfig, engine *Engine, manager *metrics.Manager) *Scheduler {
	s := &Scheduler{
		cfg:      cfg,
		engine:   engine,
		metrics:  manager,
		warmUp:   defaultWarmUp,
		cooldown: defaultCooldown,
	}

	cfg.RegisterReloadListener(func(c *domain.Config) {
		log.Info().Dur("interval", c.SyncInterval()).Msg("RSS sync interval updated, applies next cycle")
	})
	return s
}

// LastSync returns the completion time of the most recent successful cycle.
func (s *Scheduler) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

func (s *Scheduler) setLastSync(t time.Time) {
	s.mu.Lock()
	s.lastSync = t
	s.mu.Unlock()
}

// Run drives sync cycles until ctx is cancelled. Cycles never overlap.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info().
		Dur("warmUp", s.warmUp).
		Dur("interval", s.cfg.Config.SyncInterval()).
		Msg("acquisition scheduler starting")

	if err := sleepCtx(ctx, s.warmUp); err != nil {
		return err
	}

	for {
		start := time.Now()
		err := s.runCycle(ctx)
		s.metrics.SyncCycleSeconds.Observe(time.Since(start).Seconds())

		wait := s.cfg.Config.SyncInterval()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Dur("cooldown", s.cooldown).Msg("sync cycle failed, cooling down")
			wait = s.cooldown
		} else {
			s.setLastSync(time.Now())
		}

		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// runCycle fetches every enabled indexer feed once and runs each release
// through the match, evaluation, and admission pipeline sequentially.
func (s *Scheduler) runCycle(ctx context.Context) error {
	env, err := s.engine.LoadEnv(ctx)
	if err != nil {
		return err
	}
	if len(env.Events) == 0 {
		log.Debug().Msg("no monitored events, skipping cycle")
		return nil
	}

	indexers, err := s.engine.stores.Indexers.ListEnabled(ctx)
	if err != nil {
		return err
	}

	var fetched, matched, grabbed, upgraded, rejected int

	for _, indexer := range indexers {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		results, err := s.fetchFeed(ctx, indexer, env.Settings)
		if err != nil {
			log.Error().Err(err).Str("indexer", indexer.Name).Msg("feed fetch failed, skipping indexer this cycle")
			continue
		}
		fetched += len(results)
		s.metrics.ReleasesFetched.WithLabelValues(indexer.Name).Add(float64(len(results)))

		cutoff := s.cfg.Config.ReleaseAgeCutoff(indexer.RetentionDays)

		for _, res := range results {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if cutoff > 0 && !res.PublishDate.IsZero() && time.Since(res.PublishDate) > cutoff {
				continue
			}

			decision, err := s.engine.Process(ctx, releaseFromResult(res, indexer), env)
			if err != nil {
				log.Warn().Err(err).Str("release", res.Title).Msg("release processing failed")
				continue
			}
			if decision == nil {
				continue
			}

			matched++
			if decision.Grabbed {
				grabbed++
				s.metrics.ReleasesGrabbed.Inc()
				if decision.Upgrade {
					upgraded++
					s.metrics.ReleasesUpgraded.Inc()
				}
				if err := sleepCtx(ctx, s.cfg.Config.GrabDelay()); err != nil {
					return err
				}
			} else {
				rejected++
				s.metrics.ReleasesRejected.Inc()
				log.Debug().Str("release", res.Title).Str("reason", decision.Reason).Msg("release skipped")
			}
		}
	}

	log.Info().
		Int("fetched", fetched).
		Int("matched", matched).
		Int("grabbed", grabbed).
		Int("upgraded", upgraded).
		Int("rejected", rejected).
		Msg("sync cycle complete")
	return nil
}

// fetchFeed pulls one RSS page from an indexer. An empty query asks the
// indexer for its latest releases, keeping the load one request per indexer
// per cycle regardless of catalog size.
func (s *Scheduler) fetchFeed(ctx context.Context, indexer *models.Indexer, settings Settings) ([]torznab.Result, error) {
	apiKey, err := s.engine.stores.Indexers.GetDecryptedAPIKey(indexer)
	if err != nil {
		return nil, err
	}

	return s.engine.newSearcher(indexer, apiKey).Search(ctx, torznab.SearchParams{
		Categories: indexer.Categories,
		Limit:      settings.MaxResultsPerIndexer,
	})
}
