package search

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/elliotchance/pie/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"jetrent/internal/model"
	"jetrent/internal/utils"
)

//go:embed listings.yaml
var defaultListings []byte

type staticListing struct {
	ID          string  `yaml:"id"`
	Title       string  `yaml:"title"`
	Address     string  `yaml:"address"`
	Bedrooms    int     `yaml:"bedrooms"`
	Rent        float64 `yaml:"rent"`
	Description string  `yaml:"description"`
	ImageURL    string  `yaml:"image_url"`
}

// Bucket is the set of sample listings for one city
type Bucket struct {
	Location string          `yaml:"location"`
	Listings []staticListing `yaml:"listings"`
}

// StaticDispatcher searches an in-memory table of sample listings
type StaticDispatcher struct {
	buckets []Bucket
	logger  *logrus.Logger
}

// NewStaticDispatcher loads the embedded sample table
func NewStaticDispatcher(logger *logrus.Logger) (*StaticDispatcher, error) {
	return NewStaticDispatcherFromYAML(defaultListings, logger)
}

// NewStaticDispatcherFromYAML loads a sample table from YAML. The first bucket is
// the fallback for unknown locations, so at least one is required.
func NewStaticDispatcherFromYAML(data []byte, logger *logrus.Logger) (*StaticDispatcher, error) {
	var buckets []Bucket
	if err := yaml.Unmarshal(data, &buckets); err != nil {
		return nil, fmt.Errorf("failed to parse static listings: %w", err)
	}
	if len(buckets) == 0 {
		return nil, fmt.Errorf("static listings table is empty")
	}
	for i := range buckets {
		buckets[i].Location = utils.NormalizeLocation(buckets[i].Location)
	}
	return &StaticDispatcher{buckets: buckets, logger: logger}, nil
}

// Dispatch picks a bucket for the location and filters it by bedrooms and budget
func (d *StaticDispatcher) Dispatch(_ context.Context, slots model.SearchSlots) DispatchResult {
	if !slots.Has(model.SlotLocation) {
		return failed(model.SourceStatic, ErrLocationRequired)
	}

	bucket := d.lookup(slots.LocationValue())

	matches := pie.Filter(bucket.Listings, func(l staticListing) bool {
		if slots.Bedrooms != nil && l.Bedrooms != *slots.Bedrooms {
			return false
		}
		if slots.Budget != nil && l.Rent > *slots.Budget {
			return false
		}
		return true
	})

	listings := make([]model.ListingResult, 0, len(matches))
	for _, l := range matches {
		listings = append(listings, model.ListingResult{
			ID:          l.ID,
			Title:       l.Title,
			Address:     l.Address,
			Bedrooms:    l.Bedrooms,
			Rent:        l.Rent,
			Description: l.Description,
			ImageURL:    l.ImageURL,
			Source:      model.SourceStatic,
		})
	}

	d.logger.WithFields(logrus.Fields{
		"location": slots.LocationValue(),
		"bucket":   bucket.Location,
		"count":    len(listings),
	}).Debug("static search")

	return DispatchResult{Listings: listings, Source: model.SourceStatic}
}

// lookup resolves a location to a bucket: exact key, then containment either way,
// then the first bucket
func (d *StaticDispatcher) lookup(location string) Bucket {
	key := utils.NormalizeLocation(location)

	if i := pie.FindFirstUsing(d.buckets, func(b Bucket) bool { return b.Location == key }); i >= 0 {
		return d.buckets[i]
	}
	if i := pie.FindFirstUsing(d.buckets, func(b Bucket) bool {
		return utils.FuzzyMatchLocation(b.Location, key)
	}); i >= 0 {
		return d.buckets[i]
	}
	return d.buckets[0]
}
