// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package downloads

import (
	"context"
	"sync"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/sportarr/internal/models"
	"github.com/autobrr/sportarr/pkg/hashutil"
)

// Grabber sends a release to a download client. The acquisition engine
// only needs to hand off a torrent, either by URL or by file contents.
type Grabber interface {
	AddFromURL(ctx context.Context, downloadURL, category string) error
	AddFromMemory(ctx context.Context, data []byte, category string) error
	Delete(ctx context.Context, hashes []string, deleteFiles bool) error
}

// Client wraps a single qBittorrent instance. Login happens lazily on
// first use and the session is reused until an operation fails.
type Client struct {
	qbt *qbt.Client

	mu       sync.Mutex
	loggedIn bool
}

func NewClient(dc *models.DownloadClient) *Client {
	cfg := qbt.Config{
		Host:     dc.URL(),
		Username: dc.Username,
		Password: dc.Password,
		Timeout:  30,
	}
	return &Client{qbt: qbt.NewClient(cfg)}
}

func (c *Client) ensureLogin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loggedIn {
		return nil
	}
	if err := c.qbt.LoginCtx(ctx); err != nil {
		return errors.Wrap(err, "failed to connect to qBittorrent")
	}
	c.loggedIn = true
	return nil
}

func (c *Client) invalidateLogin() {
	c.mu.Lock()
	c.loggedIn = false
	c.mu.Unlock()
}

func (c *Client) AddFromURL(ctx context.Context, downloadURL, category string) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}
	if err := c.qbt.AddTorrentFromUrlCtx(ctx, downloadURL, addOptions(category)); err != nil {
		c.invalidateLogin()
		return errors.Wrap(err, "failed to add torrent from URL")
	}
	return nil
}

func (c *Client) AddFromMemory(ctx context.Context, data []byte, category string) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}
	if err := c.qbt.AddTorrentFromMemoryCtx(ctx, data, addOptions(category)); err != nil {
		c.invalidateLogin()
		return errors.Wrap(err, "failed to add torrent from memory")
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, hashes []string, deleteFiles bool) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}
	if err := c.qbt.DeleteTorrentsCtx(ctx, hashes, deleteFiles); err != nil {
		c.invalidateLogin()
		return errors.Wrap(err, "failed to delete torrents")
	}
	return nil
}

// HealthCheck verifies the instance is reachable and authenticated.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}
	if _, err := c.qbt.GetWebAPIVersionCtx(ctx); err != nil {
		c.invalidateLogin()
		return errors.Wrap(err, "failed to get qBittorrent Web API version")
	}
	return nil
}

func addOptions(category string) map[string]string {
	options := map[string]string{
		"autoTMM":       "false",
		"contentLayout": "Original",
	}
	if category != "" {
		options["category"] = category
	}
	return options
}

// grabTarget pairs a grabber with the category configured on its
// download client record.
type grabTarget struct {
	grabber  Grabber
	category string
}

// Service resolves the enabled download client and dispatches grabs.
// Client connections are cached per download client ID and rebuilt
// when the stored record changes.
type Service struct {
	store *models.DownloadClientStore

	// newGrabber is swapped out in tests.
	newGrabber func(*models.DownloadClient) (Grabber, error)

	mu      sync.Mutex
	clients map[int]*cachedClient
}

type cachedClient struct {
	grabber   Grabber
	updatedAt time.Time
	category  string
}

func NewService(store *models.DownloadClientStore) *Service {
	return &Service{
		store:      store,
		newGrabber: grabberFor,
		clients:    make(map[int]*cachedClient),
	}
}

// grabberFor dispatches on the closed client kind set. A kind missing here
// is a programming error, not a configuration the user can reach.
func grabberFor(dc *models.DownloadClient) (Grabber, error) {
	switch dc.Kind {
	case models.ClientQBittorrent:
		return NewClient(dc), nil
	default:
		return nil, errors.Errorf("unsupported download client kind %q", dc.Kind)
	}
}

// target returns the grabber for the highest-priority enabled client.
func (s *Service) target(ctx context.Context) (*grabTarget, error) {
	clients, err := s.store.ListEnabled(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list download clients")
	}
	if len(clients) == 0 {
		return nil, errors.New("no enabled download client configured")
	}

	dc := clients[0]

	s.mu.Lock()
	defer s.mu.Unlock()

	cached, ok := s.clients[dc.ID]
	if !ok || !cached.updatedAt.Equal(dc.UpdatedAt) {
		grabber, err := s.newGrabber(dc)
		if err != nil {
			return nil, err
		}
		cached = &cachedClient{
			grabber:   grabber,
			updatedAt: dc.UpdatedAt,
			category:  dc.Category,
		}
		s.clients[dc.ID] = cached
	}
	return &grabTarget{grabber: cached.grabber, category: cached.category}, nil
}

// Grab sends torrent file contents to the download client, falling back
// to the download URL when no contents were fetched.
func (s *Service) Grab(ctx context.Context, downloadURL string, data []byte) error {
	target, err := s.target(ctx)
	if err != nil {
		return err
	}

	if len(data) > 0 {
		if err := target.grabber.AddFromMemory(ctx, data, target.category); err == nil {
			return nil
		} else {
			log.Warn().Err(err).Msg("adding torrent from memory failed, retrying via URL")
		}
	}

	if downloadURL == "" {
		return errors.New("no download URL available")
	}
	return target.grabber.AddFromURL(ctx, downloadURL, target.category)
}

// Cancel aborts an in-flight download on the active client. Torrent files
// are removed along with the download.
func (s *Service) Cancel(ctx context.Context, infoHash string) error {
	hashes := hashutil.NormalizeAll([]string{infoHash})
	if len(hashes) == 0 {
		return nil
	}
	target, err := s.target(ctx)
	if err != nil {
		return err
	}
	return target.grabber.Delete(ctx, hashes, true)
}
