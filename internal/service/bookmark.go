package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"jetrent/internal/model"
	"jetrent/internal/repository"
)

// DefaultLabelColor is used when a label is created without a color
const DefaultLabelColor = "#AAAAAA"

var (
	// ErrInvalidBookmark is returned for listings without an ID
	ErrInvalidBookmark = errors.New("listing id is required")

	// ErrInvalidLabel is returned for labels without a name
	ErrInvalidLabel = errors.New("label name is required")
)

// BookmarkService manages saved listings and their labels
type BookmarkService struct {
	repo   repository.BookmarkRepository
	now    func() time.Time
	logger *logrus.Logger
}

// NewBookmarkService creates a new bookmark service
func NewBookmarkService(repo repository.BookmarkRepository, logger *logrus.Logger) *BookmarkService {
	return &BookmarkService{repo: repo, now: time.Now, logger: logger}
}

// List returns every bookmark
func (s *BookmarkService) List(ctx context.Context) ([]model.Bookmark, error) {
	return s.repo.ListBookmarks(ctx)
}

// Add saves a listing. Saving the same listing twice keeps the first bookmark.
func (s *BookmarkService) Add(ctx context.Context, listing model.ListingResult) (*model.Bookmark, error) {
	listing.ID = strings.TrimSpace(listing.ID)
	if listing.ID == "" {
		return nil, ErrInvalidBookmark
	}

	bookmark, err := s.repo.AddBookmark(ctx, listing, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.WithField("property_id", listing.ID).Info("bookmark saved")
	return bookmark, nil
}

// Remove deletes a bookmark
func (s *BookmarkService) Remove(ctx context.Context, propertyID string) error {
	return s.repo.RemoveBookmark(ctx, propertyID)
}

// IsBookmarked reports whether a listing is saved
func (s *BookmarkService) IsBookmarked(ctx context.Context, propertyID string) (bool, error) {
	_, err := s.repo.GetBookmark(ctx, propertyID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Labels returns every label
func (s *BookmarkService) Labels(ctx context.Context) ([]model.Label, error) {
	return s.repo.ListLabels(ctx)
}

// CreateLabel adds a label with a generated ID
func (s *BookmarkService) CreateLabel(ctx context.Context, req *model.LabelRequest) (*model.Label, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidLabel
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = DefaultLabelColor
	}

	label := model.Label{ID: "label-" + uuid.NewString(), Name: name, Color: color}
	if err := s.repo.CreateLabel(ctx, label); err != nil {
		return nil, err
	}
	return &label, nil
}

// UpdateLabel changes the name and/or color of a label
func (s *BookmarkService) UpdateLabel(ctx context.Context, id string, req *model.LabelUpdateRequest) (*model.Label, error) {
	label, err := s.repo.GetLabel(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidLabel
		}
		label.Name = name
	}
	if req.Color != nil && strings.TrimSpace(*req.Color) != "" {
		label.Color = strings.TrimSpace(*req.Color)
	}

	if err := s.repo.UpdateLabel(ctx, *label); err != nil {
		return nil, err
	}
	return label, nil
}

// DeleteLabel removes a label and detaches it from every bookmark
func (s *BookmarkService) DeleteLabel(ctx context.Context, id string) error {
	return s.repo.DeleteLabel(ctx, id)
}

// AttachLabel adds a label to a bookmark
func (s *BookmarkService) AttachLabel(ctx context.Context, propertyID, labelID string) error {
	return s.repo.AttachLabel(ctx, propertyID, labelID, s.now())
}

// DetachLabel removes a label from a bookmark
func (s *BookmarkService) DetachLabel(ctx context.Context, propertyID, labelID string) error {
	return s.repo.DetachLabel(ctx, propertyID, labelID)
}

// BookmarkLabels returns the labels attached to a bookmark, in attach order
func (s *BookmarkService) BookmarkLabels(ctx context.Context, propertyID string) ([]model.Label, error) {
	bookmark, err := s.repo.GetBookmark(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.ListLabels(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Label, len(all))
	for _, l := range all {
		byID[l.ID] = l
	}
	labels := make([]model.Label, 0, len(bookmark.LabelIDs))
	for _, id := range bookmark.LabelIDs {
		if l, ok := byID[id]; ok {
			labels = append(labels, l)
		}
	}
	return labels, nil
}
