package search

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"jetrent/internal/model"
	"jetrent/internal/zillow"
)

// PropertyFetcher is the part of the scrape API client the remote dispatcher needs
type PropertyFetcher interface {
	FetchProperties(ctx context.Context, params zillow.ScraperParams) (zillow.ScrapeResponse, error)
}

// RemoteDispatcher forwards searches to the listings scrape API
type RemoteDispatcher struct {
	fetcher         PropertyFetcher
	defaultMaxPrice float64
	logger          *logrus.Logger
}

// NewRemoteDispatcher creates a dispatcher over the scrape API
func NewRemoteDispatcher(fetcher PropertyFetcher, defaultMaxPrice float64, logger *logrus.Logger) *RemoteDispatcher {
	return &RemoteDispatcher{
		fetcher:         fetcher,
		defaultMaxPrice: defaultMaxPrice,
		logger:          logger,
	}
}

// Dispatch issues one request. Transport failures, bad statuses and
// unrecognized payloads all yield an empty list and an error message.
func (d *RemoteDispatcher) Dispatch(ctx context.Context, slots model.SearchSlots) DispatchResult {
	if !slots.Has(model.SlotLocation) {
		return failed(model.SourceRemote, ErrLocationRequired)
	}

	params := zillow.NewScraperParams(slots, d.defaultMaxPrice)

	resp, err := d.fetcher.FetchProperties(ctx, params)
	if err != nil {
		d.logger.WithError(err).WithField("search", params.Search).Warn("remote search failed")
		return failed(model.SourceRemote, fmt.Errorf("listing search failed: %w", err))
	}

	listings := make([]model.ListingResult, 0, len(resp.Properties))
	for _, p := range resp.Properties {
		listings = append(listings, zillow.ToListing(p))
	}

	return DispatchResult{Listings: listings, Source: model.SourceRemote}
}
