package zillow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"jetrent/internal/config"
	"jetrent/internal/model"
	"jetrent/internal/utils"
)

// DefaultMaxPrice is sent when the user gave no budget
const DefaultMaxPrice = 10000

// StatusForRent is the listing status the scrape API expects for rentals
const StatusForRent = "isForRent"

// ScraperParams is the request body of the scrape API
type ScraperParams struct {
	IsApartment    bool    `json:"isApartment"`
	IsCondo        bool    `json:"isCondo"`
	IsLotLand      bool    `json:"isLotLand"`
	IsManufactured bool    `json:"isManufactured"`
	IsMultiFamily  bool    `json:"isMultiFamily"`
	IsSingleFamily bool    `json:"isSingleFamily"`
	IsTownhouse    bool    `json:"isTownhouse"`
	MaxPrice       float64 `json:"maxPrice"`
	Search         string  `json:"search"`
	Status         string  `json:"status"`
}

// NewScraperParams builds an apartments-only rental query from conversation slots.
// A missing or zero budget falls back to defaultMaxPrice.
func NewScraperParams(slots model.SearchSlots, defaultMaxPrice float64) ScraperParams {
	if defaultMaxPrice <= 0 {
		defaultMaxPrice = DefaultMaxPrice
	}

	maxPrice := defaultMaxPrice
	if slots.Budget != nil && *slots.Budget > 0 {
		maxPrice = *slots.Budget
	}

	search := strings.TrimSpace(slots.LocationValue())
	if state := strings.TrimSpace(slots.StateValue()); state != "" {
		search += ", " + strings.ToUpper(state)
	}

	return ScraperParams{
		IsApartment: true,
		MaxPrice:    maxPrice,
		Search:      search,
		Status:      StatusForRent,
	}
}

// ResponseShape tells which layout the scrape API answered with
type ResponseShape int

const (
	ShapeUnrecognized ResponseShape = iota
	ShapeArray
	ShapeWrapped
)

func (s ResponseShape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeWrapped:
		return "wrapped"
	default:
		return "unrecognized"
	}
}

// ScrapeResponse is a classified scrape API payload
type ScrapeResponse struct {
	Shape      ResponseShape
	WrapperKey string // data, properties or results when Shape is ShapeWrapped
	Properties []model.ScrapedProperty
	Skipped    []error // items in the array that did not decode
}

var wrapperKeys = []string{"data", "properties", "results"}

// ClassifyResponse decodes a scrape API body once into one of the known shapes
func ClassifyResponse(body []byte) (ScrapeResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ScrapeResponse{Shape: ShapeUnrecognized}, fmt.Errorf("empty response body")
	}

	switch trimmed[0] {
	case '[':
		props, skipped, err := decodeItems(trimmed)
		if err != nil {
			return ScrapeResponse{Shape: ShapeUnrecognized}, fmt.Errorf("failed to decode listing array: %w", err)
		}
		return ScrapeResponse{Shape: ShapeArray, Properties: props, Skipped: skipped}, nil

	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return ScrapeResponse{Shape: ShapeUnrecognized}, fmt.Errorf("failed to decode response object: %w", err)
		}
		for _, key := range wrapperKeys {
			raw, ok := wrapper[key]
			if !ok {
				continue
			}
			raw = bytes.TrimSpace(raw)
			if len(raw) == 0 || raw[0] != '[' {
				continue
			}
			props, skipped, err := decodeItems(raw)
			if err != nil {
				return ScrapeResponse{Shape: ShapeUnrecognized}, fmt.Errorf("failed to decode %q array: %w", key, err)
			}
			return ScrapeResponse{Shape: ShapeWrapped, WrapperKey: key, Properties: props, Skipped: skipped}, nil
		}
	}

	return ScrapeResponse{Shape: ShapeUnrecognized}, fmt.Errorf("response does not contain a listings array: %s", utils.Truncate(string(trimmed), 120))
}

// decodeItems decodes each array element on its own so one odd listing does
// not drop the rest
func decodeItems(raw []byte) ([]model.ScrapedProperty, []error, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, err
	}

	props := make([]model.ScrapedProperty, 0, len(items))
	var skipped []error
	for i, item := range items {
		var p model.ScrapedProperty
		if err := json.Unmarshal(item, &p); err != nil {
			skipped = append(skipped, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		props = append(props, p)
	}
	return props, skipped, nil
}

// Client talks to the listings scrape API
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a scrape API client from search configuration
func NewClient(cfg *config.SearchConfig, logger *logrus.Logger) *Client {
	timeout := time.Duration(cfg.ScraperTimeout) * time.Second
	return &Client{
		endpoint:   cfg.ScraperURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchProperties posts params once and returns the classified response
func (c *Client) FetchProperties(ctx context.Context, params ScraperParams) (ScrapeResponse, error) {
	reqBody, err := json.Marshal(params)
	if err != nil {
		return ScrapeResponse{}, fmt.Errorf("failed to marshal scrape request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return ScrapeResponse{}, fmt.Errorf("failed to create scrape request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ScrapeResponse{}, fmt.Errorf("failed to reach listings service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ScrapeResponse{}, fmt.Errorf("failed to read scrape response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ScrapeResponse{}, fmt.Errorf("listings service returned status %d: %s", resp.StatusCode, utils.Truncate(string(body), 200))
	}

	result, err := ClassifyResponse(body)
	if err != nil {
		return result, err
	}

	for _, skipErr := range result.Skipped {
		c.logger.WithError(skipErr).WithField("search", params.Search).Warn("Skipping undecodable listing")
	}

	c.logger.WithFields(logrus.Fields{
		"search":  params.Search,
		"skipped": len(result.Skipped),
		"shape":   result.Shape.String(),
		"wrapper": result.WrapperKey,
		"count":   len(result.Properties),
		"took_ms": time.Since(start).Milliseconds(),
	}).Info("scrape API responded")

	return result, nil
}

var priceDigits = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// ParsePrice reads the first amount from strings like "$2,450/mo" or "$2,100+ 1 bd"
func ParsePrice(price string) float64 {
	match := priceDigits.FindString(price)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0
	}
	return value
}

// ToListing converts a scraped item into the listing shape the chat returns
func ToListing(p model.ScrapedProperty) model.ListingResult {
	title := p.BuildingName
	if title == "" {
		title = p.Address
	}

	parts := []string{}
	if p.StatusText != "" {
		parts = append(parts, p.StatusText)
	}
	if p.BadgeInfo != nil && p.BadgeInfo.Text != "" {
		parts = append(parts, p.BadgeInfo.Text)
	}
	description := strings.Join(parts, " · ")

	return model.ListingResult{
		ID:          p.ID(),
		Title:       title,
		Address:     p.Address,
		Bedrooms:    int(p.MinBeds),
		Bathrooms:   p.MinBaths,
		Rent:        ParsePrice(string(p.Price)),
		PriceText:   string(p.Price),
		Description: description,
		ExternalURL: ListingURL(p),
		ImageURL:    p.ImgSrc,
		Source:      model.SourceRemote,
	}
}
