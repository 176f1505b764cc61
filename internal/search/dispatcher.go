package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"jetrent/internal/config"
	"jetrent/internal/model"
	"jetrent/internal/zillow"
)

// ErrLocationRequired is reported when a search is dispatched without a location
var ErrLocationRequired = errors.New("a location is required to search for apartments")

// DispatchResult carries the listings of one search. Error is a human-readable
// message; a failed search has no listings and a non-empty Error.
type DispatchResult struct {
	Listings []model.ListingResult `json:"listings"`
	Source   string                `json:"source"`
	Error    string                `json:"error,omitempty"`
}

// Failed reports whether the search could not be performed
func (r DispatchResult) Failed() bool {
	return r.Error != ""
}

// Dispatcher runs a search for the given slots. It never returns a Go error;
// failures are reported through DispatchResult.Error.
type Dispatcher interface {
	Dispatch(ctx context.Context, slots model.SearchSlots) DispatchResult
}

// New returns the dispatcher selected by SEARCH_SOURCE
func New(cfg *config.SearchConfig, logger *logrus.Logger) (Dispatcher, error) {
	switch cfg.Source {
	case model.SourceStatic, "":
		return NewStaticDispatcher(logger)
	case model.SourceRemote:
		return NewRemoteDispatcher(zillow.NewClient(cfg, logger), cfg.DefaultMaxPrice, logger), nil
	default:
		return nil, fmt.Errorf("unknown search source %q", cfg.Source)
	}
}

func failed(source string, err error) DispatchResult {
	return DispatchResult{Listings: []model.ListingResult{}, Source: source, Error: err.Error()}
}
