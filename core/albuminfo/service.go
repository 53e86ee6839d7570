package albuminfo

import (
	"context"

	"waxcrate/cache"
	"waxcrate/config"
	"waxcrate/logger"
)

// Info holds the album metadata URLs gathered from the external APIs.
// Fields are nil when the corresponding lookup found nothing.
type Info struct {
	AlbumArtURL *string `json:"album_art_url"`
	DiscogsURL  *string `json:"discogs_url"`
	ReviewURL   *string `json:"review_url"`
}

// Service combines Discogs and Last.fm lookups behind a Redis cache.
// Each upstream is queried exactly once per lookup; failures are logged
// and surfaced as nil fields, never as errors.
type Service struct {
	discogs *DiscogsClient
	lastfm  *LastFMClient
	cache   *cache.AlbumInfoCache
}

// NewService builds a lookup service from the application configuration.
func NewService(cfg *config.Config) *Service {
	return &Service{
		discogs: NewDiscogsClient(cfg.DiscogsAPIKey, cfg.DiscogsAPISecret),
		lastfm:  NewLastFMClient(cfg.LastFMAPIKey),
		cache:   cache.NewAlbumInfoCache(),
	}
}

// Lookup returns album art, Discogs and review URLs for a release.
func (s *Service) Lookup(ctx context.Context, artist, title string) *Info {
	if cached := s.lookupCache(ctx, artist, title); cached != nil {
		return cached
	}

	info := &Info{}

	if s.discogs.Configured() {
		release, err := s.discogs.SearchRelease(ctx, artist, title)
		if err != nil {
			logger.Error("Discogs search failed",
				logger.String("artist", artist),
				logger.String("title", title),
				logger.ErrorField(err),
			)
		} else if release != nil {
			if release.CoverImage != "" {
				info.AlbumArtURL = &release.CoverImage
			}
			if release.URI != "" {
				info.DiscogsURL = &release.URI
			}
		}
	} else {
		logger.Warn("Discogs API credentials not configured")
	}

	if s.lastfm.Configured() {
		reviewURL, err := s.lastfm.AlbumURL(ctx, artist, title)
		if err != nil {
			logger.Error("Last.fm lookup failed",
				logger.String("artist", artist),
				logger.String("title", title),
				logger.ErrorField(err),
			)
		} else if reviewURL != "" {
			info.ReviewURL = &reviewURL
		}
	} else {
		logger.Warn("Last.fm API key not configured")
	}

	s.storeCache(ctx, artist, title, info)
	return info
}

func (s *Service) lookupCache(ctx context.Context, artist, title string) *Info {
	if s.cache == nil {
		return nil
	}

	var info Info
	found, err := s.cache.Get(ctx, artist, title, &info)
	if err != nil {
		logger.Warn("Album info cache read failed", logger.ErrorField(err))
		return nil
	}
	if !found {
		return nil
	}

	logger.Debug("Album info cache hit",
		logger.String("artist", artist),
		logger.String("title", title),
	)
	return &info
}

func (s *Service) storeCache(ctx context.Context, artist, title string, info *Info) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, artist, title, info); err != nil {
		logger.Warn("Album info cache write failed", logger.ErrorField(err))
	}
}
