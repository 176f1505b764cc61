package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"jetrent/internal/model"
)

// BookmarkRepository stores saved listings and the labels attached to them
type BookmarkRepository interface {
	ListBookmarks(ctx context.Context) ([]model.Bookmark, error)
	GetBookmark(ctx context.Context, propertyID string) (*model.Bookmark, error)
	// AddBookmark saves a listing; an existing bookmark is returned unchanged
	AddBookmark(ctx context.Context, listing model.ListingResult, at time.Time) (*model.Bookmark, error)
	RemoveBookmark(ctx context.Context, propertyID string) error

	ListLabels(ctx context.Context) ([]model.Label, error)
	GetLabel(ctx context.Context, id string) (*model.Label, error)
	CreateLabel(ctx context.Context, label model.Label) error
	UpdateLabel(ctx context.Context, label model.Label) error
	// DeleteLabel also detaches the label from every bookmark
	DeleteLabel(ctx context.Context, id string) error

	// AttachLabel is idempotent; both the bookmark and the label must exist
	AttachLabel(ctx context.Context, propertyID, labelID string, at time.Time) error
	DetachLabel(ctx context.Context, propertyID, labelID string) error
}

// SQLBookmarkRepository keeps bookmarks in the bookmarks, labels and
// bookmark_labels tables
type SQLBookmarkRepository struct {
	db *sqlx.DB
}

var _ BookmarkRepository = (*SQLBookmarkRepository)(nil)

// NewSQLBookmarkRepository creates the repository and seeds the default labels
func NewSQLBookmarkRepository(ctx context.Context, store *SQLStore) (*SQLBookmarkRepository, error) {
	r := &SQLBookmarkRepository{db: store.db}

	for _, label := range model.DefaultLabels {
		if err := r.insertLabel(ctx, label, true); err != nil {
			return nil, fmt.Errorf("failed to seed label %s: %w", label.ID, err)
		}
	}
	return r, nil
}

// insertLabel appends a label after the existing ones
func (r *SQLBookmarkRepository) insertLabel(ctx context.Context, label model.Label, ignoreExisting bool) error {
	// The WHERE keeps SQLite from reading ON CONFLICT as part of the SELECT
	query := `
		INSERT INTO labels (id, name, color, position)
		SELECT ?, ?, ?, COALESCE(MAX(position), 0) + 1 FROM labels WHERE 1 = 1`
	if ignoreExisting {
		query += ` ON CONFLICT (id) DO NOTHING`
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), label.ID, label.Name, label.Color)
	return err
}

type bookmarkRow struct {
	PropertyID string    `db:"property_id"`
	Listing    string    `db:"listing"`
	CreatedAt  time.Time `db:"created_at"`
}

type bookmarkLabelRow struct {
	PropertyID string `db:"property_id"`
	LabelID    string `db:"label_id"`
}

func (row bookmarkRow) toBookmark() (model.Bookmark, error) {
	b := model.Bookmark{
		PropertyID: row.PropertyID,
		CreatedAt:  row.CreatedAt,
		LabelIDs:   []string{},
	}
	if err := json.Unmarshal([]byte(row.Listing), &b.Listing); err != nil {
		return b, fmt.Errorf("failed to decode bookmark %s: %w", row.PropertyID, err)
	}
	return b, nil
}

// ListBookmarks returns all bookmarks, oldest first
func (r *SQLBookmarkRepository) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	var rows []bookmarkRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT property_id, listing, created_at FROM bookmarks ORDER BY created_at, property_id`); err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	var links []bookmarkLabelRow
	if err := r.db.SelectContext(ctx, &links, `SELECT property_id, label_id FROM bookmark_labels ORDER BY attached_at, label_id`); err != nil {
		return nil, fmt.Errorf("failed to list bookmark labels: %w", err)
	}
	labels := make(map[string][]string)
	for _, link := range links {
		labels[link.PropertyID] = append(labels[link.PropertyID], link.LabelID)
	}

	bookmarks := make([]model.Bookmark, 0, len(rows))
	for _, row := range rows {
		b, err := row.toBookmark()
		if err != nil {
			return nil, err
		}
		if ids, ok := labels[row.PropertyID]; ok {
			b.LabelIDs = ids
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// GetBookmark returns one bookmark or ErrNotFound
func (r *SQLBookmarkRepository) GetBookmark(ctx context.Context, propertyID string) (*model.Bookmark, error) {
	var row bookmarkRow
	query := r.db.Rebind(`SELECT property_id, listing, created_at FROM bookmarks WHERE property_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, propertyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	b, err := row.toBookmark()
	if err != nil {
		return nil, err
	}

	query = r.db.Rebind(`SELECT label_id FROM bookmark_labels WHERE property_id = ? ORDER BY attached_at, label_id`)
	if err := r.db.SelectContext(ctx, &b.LabelIDs, query, propertyID); err != nil {
		return nil, fmt.Errorf("failed to get bookmark labels: %w", err)
	}
	if b.LabelIDs == nil {
		b.LabelIDs = []string{}
	}
	return &b, nil
}

// AddBookmark implements BookmarkRepository
func (r *SQLBookmarkRepository) AddBookmark(ctx context.Context, listing model.ListingResult, at time.Time) (*model.Bookmark, error) {
	raw, err := json.Marshal(listing)
	if err != nil {
		return nil, fmt.Errorf("failed to encode listing: %w", err)
	}

	query := r.db.Rebind(`INSERT INTO bookmarks (property_id, listing, created_at) VALUES (?, ?, ?) ON CONFLICT (property_id) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, query, listing.ID, string(raw), at.UTC()); err != nil {
		return nil, fmt.Errorf("failed to add bookmark: %w", err)
	}
	return r.GetBookmark(ctx, listing.ID)
}

// RemoveBookmark deletes a bookmark and its label links
func (r *SQLBookmarkRepository) RemoveBookmark(ctx context.Context, propertyID string) error {
	return r.deleteWithLinks(ctx, "bookmarks", "property_id", propertyID)
}

// ListLabels returns all labels in creation order
func (r *SQLBookmarkRepository) ListLabels(ctx context.Context) ([]model.Label, error) {
	labels := []model.Label{}
	if err := r.db.SelectContext(ctx, &labels, `SELECT id, name, color FROM labels ORDER BY position, id`); err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

// GetLabel returns one label or ErrNotFound
func (r *SQLBookmarkRepository) GetLabel(ctx context.Context, id string) (*model.Label, error) {
	var label model.Label
	query := r.db.Rebind(`SELECT id, name, color FROM labels WHERE id = ?`)
	if err := r.db.GetContext(ctx, &label, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get label: %w", err)
	}
	return &label, nil
}

// CreateLabel implements BookmarkRepository
func (r *SQLBookmarkRepository) CreateLabel(ctx context.Context, label model.Label) error {
	if err := r.insertLabel(ctx, label, false); err != nil {
		return fmt.Errorf("failed to create label: %w", err)
	}
	return nil
}

// UpdateLabel implements BookmarkRepository
func (r *SQLBookmarkRepository) UpdateLabel(ctx context.Context, label model.Label) error {
	query := r.db.Rebind(`UPDATE labels SET name = ?, color = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, label.Name, label.Color, label.ID)
	if err != nil {
		return fmt.Errorf("failed to update label: %w", err)
	}
	return requireAffected(res)
}

// DeleteLabel implements BookmarkRepository
func (r *SQLBookmarkRepository) DeleteLabel(ctx context.Context, id string) error {
	return r.deleteWithLinks(ctx, "labels", "id", id)
}

// AttachLabel implements BookmarkRepository
func (r *SQLBookmarkRepository) AttachLabel(ctx context.Context, propertyID, labelID string, at time.Time) error {
	if _, err := r.GetBookmark(ctx, propertyID); err != nil {
		return err
	}
	if _, err := r.GetLabel(ctx, labelID); err != nil {
		return err
	}

	query := r.db.Rebind(`INSERT INTO bookmark_labels (property_id, label_id, attached_at) VALUES (?, ?, ?) ON CONFLICT (property_id, label_id) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, query, propertyID, labelID, at.UTC()); err != nil {
		return fmt.Errorf("failed to attach label: %w", err)
	}
	return nil
}

// DetachLabel implements BookmarkRepository
func (r *SQLBookmarkRepository) DetachLabel(ctx context.Context, propertyID, labelID string) error {
	if _, err := r.GetBookmark(ctx, propertyID); err != nil {
		return err
	}

	query := r.db.Rebind(`DELETE FROM bookmark_labels WHERE property_id = ? AND label_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, propertyID, labelID); err != nil {
		return fmt.Errorf("failed to detach label: %w", err)
	}
	return nil
}

// deleteWithLinks removes a bookmark or label row and its bookmark_labels rows
// in one transaction, so the cascade holds even without foreign key support
func (r *SQLBookmarkRepository) deleteWithLinks(ctx context.Context, table, column, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	linkColumn := "property_id"
	if table == "labels" {
		linkColumn = "label_id"
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(`DELETE FROM bookmark_labels WHERE %s = ?`, linkColumn)), id); err != nil {
		return fmt.Errorf("failed to delete label links: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table, column)), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
