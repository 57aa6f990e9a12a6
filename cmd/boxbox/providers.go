package main

import (
	"time"

	"github.com/okian/boxbox/internal/config"
	"github.com/okian/boxbox/internal/fetchcache"
	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
)

// buildProviders wires the two provider clients, sharing one fetch cache
// when configured. The returned closer is nil when caching is disabled.
func buildProviders(cfg *config.Config) (*fastf1.Client, *openf1.Client, func() error, error) {
	var cache *fetchcache.Cache
	var closer func() error
	if cfg.CachePath != "" {
		c, err := fetchcache.Open(cfg.CachePath)
		if err != nil {
			return nil, nil, nil, err
		}
		cache = c
		closer = c.Close
	}

	secondaryOpts := []openf1.Option{
		openf1.WithTimeout(time.Duration(cfg.OpenF1TimeoutS) * time.Second),
	}
	primaryOpts := []fastf1.Option{
		fastf1.WithTimeout(time.Duration(cfg.FastF1TimeoutS) * time.Second),
	}
	if cache != nil {
		secondaryOpts = append(secondaryOpts, openf1.WithCache(cache))
		primaryOpts = append(primaryOpts, fastf1.WithCache(cache))
	}

	secondary, err := openf1.New(cfg.OpenF1BaseURL, secondaryOpts...)
	if err != nil {
		return nil, nil, nil, err
	}
	primary, err := fastf1.New(cfg.FastF1BaseURL, primaryOpts...)
	if err != nil {
		return nil, nil, nil, err
	}
	return primary, secondary, closer, nil
}
