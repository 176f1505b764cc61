package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/sirupsen/logrus"

	"jetrent/internal/model"
)

// Bookmark document keys
const (
	BookmarksKey = "bookmarks:items"
	LabelsKey    = "bookmarks:labels"
)

// KVBookmarkRepository keeps bookmarks and labels as two JSON documents in a
// key/value store. Writes are serialized within the process.
type KVBookmarkRepository struct {
	kv     KV
	mu     sync.Mutex
	logger *logrus.Logger
}

var _ BookmarkRepository = (*KVBookmarkRepository)(nil)

// NewKVBookmarkRepository creates the repository and seeds the default labels
// when no label document exists yet
func NewKVBookmarkRepository(ctx context.Context, kv KV, logger *logrus.Logger) (*KVBookmarkRepository, error) {
	r := &KVBookmarkRepository{kv: kv, logger: logger}

	_, ok, err := kv.Get(ctx, LabelsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := r.save(ctx, nil, model.DefaultLabels); err != nil {
			return nil, fmt.Errorf("failed to seed labels: %w", err)
		}
	}
	return r, nil
}

func (r *KVBookmarkRepository) load(ctx context.Context) ([]model.Bookmark, []model.Label, error) {
	bookmarks, err := loadDocument[model.Bookmark](ctx, r, BookmarksKey)
	if err != nil {
		return nil, nil, err
	}
	labels, err := loadDocument[model.Label](ctx, r, LabelsKey)
	if err != nil {
		return nil, nil, err
	}
	return bookmarks, labels, nil
}

// loadDocument decodes one list document. A malformed document is treated as
// empty so the other document stays usable.
func loadDocument[T any](ctx context.Context, r *KVBookmarkRepository, key string) ([]T, error) {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		r.logger.WithField("key", key).WithError(err).Warn("Malformed bookmark document, using empty list")
		return nil, nil
	}
	return items, nil
}

func (r *KVBookmarkRepository) save(ctx context.Context, bookmarks []model.Bookmark, labels []model.Label) error {
	if bookmarks == nil {
		bookmarks = []model.Bookmark{}
	}
	if labels == nil {
		labels = []model.Label{}
	}

	rawBookmarks, err := json.Marshal(bookmarks)
	if err != nil {
		return err
	}
	rawLabels, err := json.Marshal(labels)
	if err != nil {
		return err
	}
	return r.kv.SetMany(ctx, map[string][]byte{
		BookmarksKey: rawBookmarks,
		LabelsKey:    rawLabels,
	})
}

// update runs fn on the current documents and saves them when fn succeeds
func (r *KVBookmarkRepository) update(ctx context.Context, fn func(bookmarks []model.Bookmark, labels []model.Label) ([]model.Bookmark, []model.Label, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookmarks, labels, err := r.load(ctx)
	if err != nil {
		return err
	}
	bookmarks, labels, err = fn(bookmarks, labels)
	if err != nil {
		return err
	}
	return r.save(ctx, bookmarks, labels)
}

func findBookmark(bookmarks []model.Bookmark, propertyID string) int {
	return pie.FindFirstUsing(bookmarks, func(b model.Bookmark) bool { return b.PropertyID == propertyID })
}

func findLabel(labels []model.Label, id string) int {
	return pie.FindFirstUsing(labels, func(l model.Label) bool { return l.ID == id })
}

func normalizeBookmark(b model.Bookmark) model.Bookmark {
	if b.LabelIDs == nil {
		b.LabelIDs = []string{}
	}
	return b
}

// ListBookmarks implements BookmarkRepository
func (r *KVBookmarkRepository) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	bookmarks, _, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return pie.Map(append([]model.Bookmark{}, bookmarks...), normalizeBookmark), nil
}

// GetBookmark implements BookmarkRepository
func (r *KVBookmarkRepository) GetBookmark(ctx context.Context, propertyID string) (*model.Bookmark, error) {
	bookmarks, _, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	i := findBookmark(bookmarks, propertyID)
	if i < 0 {
		return nil, ErrNotFound
	}
	b := normalizeBookmark(bookmarks[i])
	return &b, nil
}

// AddBookmark implements BookmarkRepository
func (r *KVBookmarkRepository) AddBookmark(ctx context.Context, listing model.ListingResult, at time.Time) (*model.Bookmark, error) {
	var added model.Bookmark
	err := r.update(ctx, func(bookmarks []model.Bookmark, labels []model.Label) ([]model.Bookmark, []model.Label, error) {
		if i := findBookmark(bookmarks, listing.ID); i >= 0 {
			added = normalizeBookmark(bookmarks[i])
			return bookmarks, labels, nil
		}
		added = model.Bookmark{PropertyID: listing.ID, Listing: listing, LabelIDs: []string{}, CreatedAt: at.UTC()}
		return append(bookmarks, added), labels, nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// RemoveBookmark implements BookmarkRepository
func (r *KVBookmarkRepository) RemoveBookmark(ctx context.Context, propertyID string) error {
	return r.update(ctx, func(bookmarks []model.Bookmark, labels []model.Label) ([]model.Bookmark, []model.Label, error) {
		i := findBookmark(bookmarks, propertyID)
		if i < 0 {
			return nil, nil, ErrNotFound
		}
		return slices.Delete(bookmarks, i, i+1), labels, nil
	})
}

// ListLabels implements BookmarkRepository
func (r *KVBookmarkRepository) ListLabels(ctx context.Context) ([]model.Label, error) {
	_, labels, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []model.Label{}
	}
	return labels, nil
}

// GetLabel implements BookmarkRepository
func (r *KVBookmarkRepository) GetLabel(ctx context.Context, id string) (*model.Label, error) {
	_, labels, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	i := findLabel(labels, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	label := labels[i]
	return &label, nil
}

// CreateLabel implements BookmarkRepository
func (r *KVBookmarkRepository) CreateLabel(ctx context.Context, label model.Label) error {
	return r.update(ctx, func(bookmarks []model.Bookmark, labels []model.Label) ([]model.Bookmark, []model.Label, error) {
		if findLabel(labels, label.ID) >= 0 {
			return nil, nil, fmt.Errorf("label %s already exists", label.ID)
		}
		return bookmarks, append(labels, label), nil
	})
}

// UpdateLabel implements BookmarkRepository
func (r *KVBookmarkRepository) UpdateLabel(ctx context.Context, label model.Label) error {
	return r.update(ctx, func(bookmarks []model.Bookmark, labels []model.Label) ([]model.Bookmark, []model.Label, error) {
		i := findLabel(labels, label.ID)
		if i < 0 {
			return nil, nil, ErrNotFound
		}
		labels[i] = label
		return bookmarks, labels, nil
	})
}

// DeleteLabel implements BookmarkRepository
func (r *KVBookmarkRepository) DeleteLabel(ctx context.Context, id string) error {
	return r.update(ctx, func(bookmarks []model.Bookmark, labels []model.Label) ([]model.Bookmark, []model.Label, error) {
		i := findLabel(labels, id)
		if i < 0 {
			return nil, nil, ErrNotFound
		}
		for j := range bookmarks {
			bookmarks[j].LabelIDs = pie.Filter(bookmarks[j].LabelIDs, func(l string) bool { return l != id })
		}
		return bookmarks, slices.Delete(labels, i, i+1), nil
	})
}

// AttachLabel implements BookmarkRepository
func (r *KVBookmarkRepository) AttachLabel(ctx context.Context, propertyID, labelID string, _ time.Time) error {
	return r.update(ctx, func(bookmarks []model.Bookmark, labels []model.Label) ([]model.Bookmark, []model.Label, error) {
		i := findBookmark(bookmarks, propertyID)
		if i < 0 || findLabel(labels, labelID) < 0 {
			return nil, nil, ErrNotFound
		}
		if !pie.Contains(bookmarks[i].LabelIDs, labelID) {
			bookmarks[i].LabelIDs = append(bookmarks[i].LabelIDs, labelID)
		}
		return bookmarks, labels, nil
	})
}

// DetachLabel implements BookmarkRepository
func (r *KVBookmarkRepository) DetachLabel(ctx context.Context, propertyID, labelID string) error {
	return r.update(ctx, func(bookmarks []model.Bookmark, labels []model.Label) ([]model.Bookmark, []model.Label, error) {
		i := findBookmark(bookmarks, propertyID)
		if i < 0 {
			return nil, nil, ErrNotFound
		}
		bookmarks[i].LabelIDs = pie.Filter(bookmarks[i].LabelIDs, func(l string) bool { return l != labelID })
		return bookmarks, labels, nil
	})
}
