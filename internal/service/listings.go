package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"jetrent/internal/model"
	"jetrent/internal/search"
	"jetrent/internal/zillow"
)

// ListingService runs searches outside the dialogue, for clients that
// already know the parameters
type ListingService struct {
	dispatcher search.Dispatcher
	logger     *logrus.Logger
}

// NewListingService creates a new listing service
func NewListingService(dispatcher search.Dispatcher, logger *logrus.Logger) *ListingService {
	return &ListingService{dispatcher: dispatcher, logger: logger}
}

// Search dispatches the slots and attaches the outbound deep link. Only a
// missing location is returned as an error; dispatch failures are reported
// in the response.
func (s *ListingService) Search(ctx context.Context, slots model.SearchSlots) (*model.ListingSearchResponse, error) {
	if !slots.Has(model.SlotLocation) {
		return nil, search.ErrLocationRequired
	}
	startTime := time.Now()

	result := s.dispatcher.Dispatch(ctx, slots)
	resp := &model.ListingSearchResponse{
		Listings:  result.Listings,
		Source:    result.Source,
		SearchURL: zillow.SearchURLForSlots(slots),
		Error:     result.Error,
		Took:      time.Since(startTime).Milliseconds(),
	}
	if resp.Listings == nil {
		resp.Listings = []model.ListingResult{}
	}

	s.logger.WithFields(logrus.Fields{
		"location": slots.LocationValue(),
		"source":   resp.Source,
		"count":    len(resp.Listings),
		"error":    resp.Error,
	}).Info("direct listing search")

	return resp, nil
}

// SearchURL builds the deep link for the slots
func (s *ListingService) SearchURL(slots model.SearchSlots) (string, error) {
	if !slots.Has(model.SlotLocation) {
		return "", search.ErrLocationRequired
	}
	return zillow.SearchURLForSlots(slots), nil
}
