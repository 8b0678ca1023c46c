// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/sportarr/internal/models"
	"github.com/autobrr/sportarr/internal/pkg/timeouts"
	"github.com/autobrr/sportarr/internal/services/torznab"
	"github.com/autobrr/sportarr/pkg/releases"
)

// defaultBackoffLadder is the escalating wait before retrying a slot whose
// most recent attempt failed. Further retries cap at the last value. The
// values are tunable defaults, not business rules.
var defaultBackoffLadder = []time.Duration{
	30 * time.Minute,
	60 * time.Minute,
	120 * time.Minute,
	240 * time.Minute,
	480 * time.Minute,
}

const defaultCascadeLimit = 4

// Downloader is the slice of the download-client service the engine needs.
type Downloader interface {
	Grab(ctx context.Context, downloadURL string, data []byte) error
	Cancel(ctx context.Context, infoHash string) error
}

// feedSearcher is the slice of the torznab client the engine needs for
// manual and cascade searches.
type feedSearcher interface {
	Search(ctx context.Context, params torznab.SearchParams) ([]torznab.Result, error)
}

// Settings carries the per-cycle configuration snapshot. Read through a
// provider so config reloads take effect without restarting the engine.
type Settings struct {
	MultiPartEnabled     bool
	MaxResultsPerIndexer int
	CacheTTL             time.Duration
}

// Stores bundles the persistence collaborators.
type Stores struct {
	Events          *models.EventStore
	Files           *models.MediaFileStore
	Queue           *models.QueueStore
	History         *models.HistoryStore
	Blocklist       *models.BlocklistStore
	QualityProfiles *models.QualityProfileStore
	CustomFormats   *models.CustomFormatStore
	ReleaseProfiles *models.ReleaseProfileStore
	Indexers        *models.IndexerStore
}

// Decision is the outcome of running one release through the admission
// chain.
type Decision struct {
	Eval    *Evaluation
	Grabbed bool
	Upgrade bool
	Reason  string
}

// Engine drives matching, evaluation, and the grab/skip decision for every
// candidate release. One engine instance serves both the RSS cycle and
// manual searches; cascading upgrade searches run on its own bounded group.
type Engine struct {
	stores     Stores
	downloader Downloader
	cache      *SearchCache
	parser     *releases.Parser
	matcher    *Matcher
	evaluator  *Evaluator
	settings   func() Settings

	backoffLadder []time.Duration
	newSearcher   func(indexer *models.Indexer, apiKey string) feedSearcher

	cascades   *cascadeGuard
	cascadeGrp *errgroup.Group
	cascadeCtx context.Context
	nowFn      func() time.Time
}

// EngineOptions tunes engine behavior. Zero values select defaults.
type EngineOptions struct {
	BackoffLadder []time.Duration
	CascadeLimit  int
}

// NewEngine builds an engine whose cascade tasks are bound to ctx; a
// cancelled ctx stops new cascades and Close drains the running ones.
func NewEngine(ctx context.Context, stores Stores, downloader Downloader, cache *SearchCache, parser *releases.Parser, settings func() Settings, opts EngineOptions) *Engine {
	ladder := opts.BackoffLadder
	if len(ladder) == 0 {
		ladder = defaultBackoffLadder
	}
	limit := opts.CascadeLimit
	if limit <= 0 {
		limit = defaultCascadeLimit
	}

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(limit)

	return &Engine{
		stores:        stores,
		downloader:    downloader,
		cache:         cache,
		parser:        parser,
		matcher:       NewMatcher(parser),
		evaluator:     NewEvaluator(parser),
		settings:      settings,
		backoffLadder: ladder,
		newSearcher: func(indexer *models.Indexer, apiKey string) feedSearcher {
			return torznab.NewClient(indexer.Name, indexer.BaseURL, apiKey, indexer.Timeout())
		},
		cascades:   newCascadeGuard(),
		cascadeGrp: grp,
		cascadeCtx: grpCtx,
		nowFn:      time.Now,
	}
}

// Close waits for in-flight cascade searches to drain.
func (e *Engine) Close() {
	_ = e.cascadeGrp.Wait()
}

// Env is the per-cycle snapshot of monitored events and their profiles,
// loaded once per cycle rather than once per release.
type Env struct {
	Events          []*models.Event
	QualityProfiles map[int]*models.QualityProfile
	CustomFormats   []*models.CustomFormat
	ReleaseProfiles []*models.ReleaseProfile
	Settings        Settings
}

func (env *Env) profileFor(event *models.Event) *models.QualityProfile {
	if event.QualityProfileID == nil {
		return nil
	}
	return env.QualityProfiles[*event.QualityProfileID]
}

// LoadEnv reads the monitored catalog and profile configuration. Events are
// ordered soonest-dated first so the matcher tries the most likely event
// before the long tail.
func (e *Engine) LoadEnv(ctx context.Context) (*Env, error) {
	events, err := e.stores.Events.ListMonitored(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load monitored events: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		switch {
		case events[i].AirDate == nil:
			return false
		case events[j].AirDate == nil:
			return true
		default:
			return events[i].AirDate.Before(*events[j].AirDate)
		}
	})

	profiles, err := e.stores.QualityProfiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quality profiles: %w", err)
	}
	profileMap := make(map[int]*models.QualityProfile, len(profiles))
	for _, p := range profiles {
		profileMap[p.ID] = p
	}

	formats, err := e.stores.CustomFormats.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom formats: %w", err)
	}

	releaseProfiles, err := e.stores.ReleaseProfiles.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load release profiles: %w", err)
	}

	return &Env{
		Events:          events,
		QualityProfiles: profileMap,
		CustomFormats:   formats,
		ReleaseProfiles: releaseProfiles,
		Settings:        e.settings(),
	}, nil
}

// Process matches one raw release against the monitored catalog and, on a
// match, evaluates and admits it. A nil decision means no event claimed the
// release.
func (e *Engine) Process(ctx context.Context, rel Release, env *Env) (*Decision, error) {
	match, ok := e.matcher.FindMatch(rel, env.Events)
	if !ok {
		return nil, nil
	}

	eval := &Evaluation{Release: rel, Approved: true}
	eval.EventID = match.Event.ID
	eval.Confidence = match.Confidence

	if part, found := DetectPart(rel.Title, match.Event.Sport); found {
		eval.Segment = part.Name
		eval.PartNumber = part.Number
	}

	profile := env.profileFor(match.Event)
	e.evaluator.Evaluate(eval, profile, env.CustomFormats, match.Event, env.Settings.MultiPartEnabled)
	ApplyReleaseProfiles(eval, env.ReleaseProfiles)

	return e.admit(ctx, eval, match.Event, profile)
}

func skip(eval *Evaluation, reason string) *Decision {
	return &Decision{Eval: eval, Reason: reason}
}

// admit walks the decision chain for one evaluated release: segment policy,
// queue state, blocklist, backoff, existing file, cascade trigger, and the
// final approval gate.
func (e *Engine) admit(ctx context.Context, eval *Evaluation, event *models.Event, profile *models.QualityProfile) (*Decision, error) {
	if eval.SegmentRejection != "" {
		return skip(eval, eval.SegmentRejection), nil
	}

	active, err := e.stores.Queue.ListActiveForSlot(ctx, eval.EventID, eval.Segment)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue state: %w", err)
	}

	var replacing *models.QueueItem
	for _, item := range active {
		switch item.Status {
		case models.QueueStatusCompleted, models.QueueStatusImporting:
			return skip(eval, "a completed download is waiting for import"), nil
		default:
			if eval.TotalScore() <= item.TotalScore {
				return skip(eval, fmt.Sprintf("queued release already scores %d (candidate %d)", item.TotalScore, eval.TotalScore())), nil
			}
			replacing = item
		}
	}

	blocked, err := e.isBlocked(ctx, eval.Release)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocklist: %w", err)
	}
	if blocked {
		return skip(eval, "release is blocklisted"), nil
	}

	if reason, waiting, err := e.inBackoff(ctx, eval); err != nil {
		return nil, err
	} else if waiting {
		return skip(eval, reason), nil
	}

	upgrade := false
	existing, err := e.stores.Files.GetByEventSegment(ctx, eval.EventID, eval.Segment)
	switch {
	case err == nil:
		if eval.TotalScore() <= existing.TotalScore() {
			return skip(eval, fmt.Sprintf("existing file already scores %d (candidate %d)", existing.TotalScore(), eval.TotalScore())), nil
		}
		if profile != nil && !profile.UpgradesEnabled {
			return skip(eval, fmt.Sprintf("upgrades disabled by profile %q", profile.Name)), nil
		}
		if profile != nil && profile.UpgradeUntilScore > 0 && existing.TotalScore() >= profile.UpgradeUntilScore {
			return skip(eval, fmt.Sprintf("existing file score %d already meets the upgrade ceiling %d", existing.TotalScore(), profile.UpgradeUntilScore)), nil
		}
		upgrade = true
	case errors.Is(err, models.ErrMediaFileNotFound):
	default:
		return nil, fmt.Errorf("failed to read existing file: %w", err)
	}

	if upgrade && eval.Segment != "" {
		e.cascadeSiblings(ctx, event, eval)
	}

	if !eval.Approved {
		return skip(eval, strings.Join(eval.Rejections, "; ")), nil
	}

	if err := e.grab(ctx, eval, replacing); err != nil {
		return nil, err
	}
	return &Decision{Eval: eval, Grabbed: true, Upgrade: upgrade}, nil
}

// isBlocked applies the protocol-specific blocklist key: content hash for
// torrents, (title, indexer) for host-based protocols.
func (e *Engine) isBlocked(ctx context.Context, rel Release) (bool, error) {
	if rel.Protocol == models.ProtocolTorrent && rel.InfoHash != "" {
		return e.stores.Blocklist.IsBlocked(ctx, rel.InfoHash, "", "")
	}
	return e.stores.Blocklist.IsBlocked(ctx, "", rel.Title, rel.Indexer)
}

// inBackoff reports whether a failure on the slot's most recent attempt
// still holds the slot closed. The wait escalates with the retry count and
// caps at the ladder's last rung.
func (e *Engine) inBackoff(ctx context.Context, eval *Evaluation) (string, bool, error) {
	latest, err := e.stores.Queue.LatestForSlot(ctx, eval.EventID, eval.Segment)
	if err != nil {
		if errors.Is(err, models.ErrQueueItemNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read attempt history: %w", err)
	}
	if latest.Status != models.QueueStatusFailed {
		return "", false, nil
	}

	// MarkFailed counts the failure it records, so a first failure reads
	// back as retry count 1 and maps to the ladder's first rung.
	rung := latest.RetryCount - 1
	if rung < 0 {
		rung = 0
	}
	if rung >= len(e.backoffLadder) {
		rung = len(e.backoffLadder) - 1
	}
	nextRetry := latest.UpdatedAt.Add(e.backoffLadder[rung])
	if e.nowFn().Before(nextRetry) {
		return fmt.Sprintf("backoff after failed attempt, retry eligible at %s", nextRetry.UTC().Format(time.RFC3339)), true, nil
	}
	return "", false, nil
}

// grab sends the release to the download client and records the queue and
// history rows. Replacing an in-flight item cancels it first so the slot
// never holds two non-terminal items.
func (e *Engine) grab(ctx context.Context, eval *Evaluation, replacing *models.QueueItem) error {
	if replacing != nil {
		if err := e.downloader.Cancel(ctx, replacing.InfoHash); err != nil {
			log.Warn().Err(err).Str("release", replacing.ReleaseTitle).Msg("failed to cancel replaced download")
		}
		if err := e.stores.Queue.SetStatus(ctx, replacing.ID, models.QueueStatusCancelled, "replaced by a higher scoring release"); err != nil {
			return fmt.Errorf("failed to cancel replaced queue item: %w", err)
		}
	}

	if err := e.downloader.Grab(ctx, eval.Release.DownloadURL, nil); err != nil {
		return fmt.Errorf("failed to send release to download client: %w", err)
	}

	if _, err := e.stores.Queue.Create(ctx, &models.QueueItem{
		EventID:      eval.EventID,
		Segment:      eval.Segment,
		ReleaseTitle: eval.Release.Title,
		Indexer:      eval.Release.Indexer,
		DownloadURL:  eval.Release.DownloadURL,
		InfoHash:     eval.Release.InfoHash,
		TotalScore:   eval.TotalScore(),
		QualityScore: eval.QualityScore,
		FormatScore:  eval.FormatScore + eval.PreferredScore,
	}); err != nil {
		return fmt.Errorf("failed to create queue item: %w", err)
	}

	if _, err := e.stores.History.Add(ctx, &models.HistoryEntry{
		EventID:      eval.EventID,
		Segment:      eval.Segment,
		ReleaseTitle: eval.Release.Title,
		Indexer:      eval.Release.Indexer,
		InfoHash:     eval.Release.InfoHash,
		TotalScore:   eval.TotalScore(),
	}); err != nil {
		return fmt.Errorf("failed to record grab history: %w", err)
	}

	log.Info().
		Str("release", eval.Release.Title).
		Int("eventID", eval.EventID).
		Str("segment", eval.Segment).
		Int("score", eval.TotalScore()).
		Msg("grabbed release")
	return nil
}

// cascadeSiblings queues an asynchronous re-search for every sibling
// segment whose existing file scores below the new release, so an upgrade
// of one card pulls the rest of the broadcast up to the same tier.
func (e *Engine) cascadeSiblings(ctx context.Context, event *models.Event, eval *Evaluation) {
	files, err := e.stores.Files.ListByEvent(ctx, eval.EventID)
	if err != nil {
		log.Error().Err(err).Int("eventID", eval.EventID).Msg("failed to list sibling files for cascade")
		return
	}

	resolution := strings.ToLower(e.parser.Parse(eval.Release.Title).Resolution)
	targetScore := eval.TotalScore()

	for _, file := range files {
		if file.Segment == eval.Segment || file.Segment == "" {
			continue
		}
		if file.TotalScore() >= targetScore {
			continue
		}
		e.startCascade(event, file.Segment, resolution, targetScore)
	}
}

// startCascade launches one supervised re-search task. Duplicate keys and a
// saturated group are dropped silently; the key is released when the task
// finishes.
func (e *Engine) startCascade(event *models.Event, segment, resolution string, targetScore int) {
	key := cascadeKey{eventID: event.ID, segment: segment, resolution: resolution}
	if !e.cascades.tryAcquire(key) {
		return
	}

	started := e.cascadeGrp.TryGo(func() error {
		defer e.cascades.release(key)

		if err := e.researchSlot(e.cascadeCtx, event, segment, targetScore); err != nil {
			log.Warn().Err(err).
				Int("eventID", event.ID).
				Str("segment", segment).
				Msg("cascade re-search failed")
		}
		return nil
	})
	if !started {
		e.cascades.release(key)
		log.Debug().Int("eventID", event.ID).Str("segment", segment).Msg("cascade slots saturated, dropping re-search")
	}
}

// researchSlot re-runs the search pipeline for one (event, segment) slot.
// Only candidates that classify as the requested segment are admitted.
func (e *Engine) researchSlot(ctx context.Context, event *models.Event, segment string, targetScore int) error {
	env, err := e.LoadEnv(ctx)
	if err != nil {
		return err
	}

	candidates, err := e.eventReleases(ctx, event, env.Settings)
	if err != nil {
		return err
	}

	for _, rel := range candidates {
		if part, found := DetectPart(rel.Title, event.Sport); !found || part.Name != segment {
			continue
		}
		decision, err := e.Process(ctx, rel, env)
		if err != nil {
			log.Warn().Err(err).Str("release", rel.Title).Msg("cascade candidate failed")
			continue
		}
		if decision != nil && decision.Grabbed {
			log.Info().
				Str("release", rel.Title).
				Int("targetScore", targetScore).
				Msg("cascade upgrade grabbed")
			return nil
		}
	}
	return nil
}

// Search runs the full pipeline for one event on demand, sharing the result
// cache with the RSS cycle.
func (e *Engine) Search(ctx context.Context, eventID int) ([]Decision, error) {
	event, err := e.stores.Events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	env, err := e.LoadEnv(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := e.eventReleases(ctx, event, env.Settings)
	if err != nil {
		return nil, err
	}

	decisions := make([]Decision, 0, len(candidates))
	for _, rel := range candidates {
		decision, err := e.Process(ctx, rel, env)
		if err != nil {
			log.Warn().Err(err).Str("release", rel.Title).Msg("release processing failed")
			continue
		}
		if decision != nil {
			decisions = append(decisions, *decision)
		}
	}
	return decisions, nil
}

// eventReleases returns candidate releases for one event, from the cache
// when fresh enough, otherwise by querying every enabled indexer.
func (e *Engine) eventReleases(ctx context.Context, event *models.Event, settings Settings) ([]Release, error) {
	query := event.Title

	if cached, hit := e.cache.TryGet(query, settings.CacheTTL); hit {
		rels := make([]Release, 0, len(cached))
		for _, eval := range cached {
			rels = append(rels, eval.Release)
		}
		return rels, nil
	}

	indexers, err := e.stores.Indexers.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexers: %w", err)
	}

	searchCtx, cancel := timeouts.WithSearchTimeout(ctx, timeouts.AdaptiveSearchTimeout(len(indexers)))
	defer cancel()

	var rels []Release
	succeeded := 0
	for _, indexer := range indexers {
		apiKey, err := e.stores.Indexers.GetDecryptedAPIKey(indexer)
		if err != nil {
			log.Error().Err(err).Str("indexer", indexer.Name).Msg("failed to decrypt indexer API key")
			continue
		}

		results, err := e.newSearcher(indexer, apiKey).Search(searchCtx, torznab.SearchParams{
			Query:      query,
			Categories: indexer.Categories,
			Limit:      settings.MaxResultsPerIndexer,
		})
		if err != nil {
			log.Error().Err(err).Str("indexer", indexer.Name).Msg("indexer search failed")
			continue
		}
		succeeded++
		for _, res := range results {
			rels = append(rels, releaseFromResult(res, indexer))
		}
	}

	// A cycle where every indexer failed says nothing about the event, so
	// don't pin an empty answer for the full TTL.
	if succeeded == 0 && len(indexers) > 0 {
		return rels, nil
	}

	evals := make([]Evaluation, 0, len(rels))
	for _, rel := range rels {
		evals = append(evals, Evaluation{Release: rel})
	}
	e.cache.Store(query, evals)

	return rels, nil
}
