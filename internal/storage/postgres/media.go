package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"media_syncer/internal/domain"
	"media_syncer/internal/errs"
)

type MediaStore struct {
	db *sqlx.DB
}

func NewMediaStore(db *sqlx.DB) *MediaStore {
	return &MediaStore{db: db}
}

type mediaRow struct {
	ID          string         `db:"id"`
	OwnerID     string         `db:"owner_id"`
	Username    string         `db:"username"`
	Caption     string         `db:"caption"`
	CreatedTime time.Time      `db:"created_time"`
	PostType    string         `db:"post_type"`
	Images      assetMap       `db:"images"`
	Videos      assetMap       `db:"videos"`
	Link        string         `db:"link"`
	Tags        pq.StringArray `db:"tags"`
	RetailLinks linkList       `db:"retail_links"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r mediaRow) toDomain() domain.MediaItem {
	return domain.MediaItem{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Username:    r.Username,
		Caption:     r.Caption,
		CreatedTime: r.CreatedTime,
		PostType:    r.PostType,
		Images:      r.Images,
		Videos:      r.Videos,
		Link:        r.Link,
		Tags:        r.Tags,
		RetailLinks: r.RetailLinks,
	}
}

const mediaColumns = `id, owner_id, username, caption, created_time, post_type, images, videos, link, tags, retail_links, created_at, updated_at`

// Exists reports whether a media item with the given feed identifier is
// already stored. One independent query per probe.
func (s *MediaStore) Exists(ctx context.Context, id string) (bool, error) {
	var found bool
	err := s.db.GetContext(ctx, &found,
		"SELECT EXISTS(SELECT 1 FROM media WHERE id = $1)", id)
	if err != nil {
		return false, fmt.Errorf("%w: probe media: %v", errs.ErrPersistenceFailure, err)
	}
	return found, nil
}

func (s *MediaStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM media WHERE owner_id = $1", ownerID)
	if err != nil {
		return 0, fmt.Errorf("%w: count media: %v", errs.ErrPersistenceFailure, err)
	}
	return count, nil
}

// InsertBatch persists all items in a single multi-row insert.
func (s *MediaStore) InsertBatch(ctx context.Context, items []domain.MediaItem) error {
	if len(items) == 0 {
		return nil
	}

	const cols = 11
	var sb strings.Builder
	sb.WriteString("INSERT INTO media (id, owner_id, username, caption, created_time, post_type, images, videos, link, tags, retail_links) VALUES ")
	valueArgs := make([]interface{}, 0, len(items)*cols)

	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*cols + j + 1))
		}
		sb.WriteString(")")
		valueArgs = append(valueArgs,
			item.ID,
			item.OwnerID,
			item.Username,
			item.Caption,
			item.CreatedTime,
			item.PostType,
			assetMap(item.Images),
			assetMap(item.Videos),
			item.Link,
			pq.StringArray(item.Tags),
			linkList(item.RetailLinks),
		)
	}

	if _, err := s.db.ExecContext(ctx, sb.String(), valueArgs...); err != nil {
		return fmt.Errorf("%w: insert media batch: %v", errs.ErrPersistenceFailure, err)
	}
	return nil
}

// Upsert writes one item filtered by identifier and owner. Retail links are
// left untouched: enrichment owns that column.
func (s *MediaStore) Upsert(ctx context.Context, item *domain.MediaItem) error {
	query := `
		INSERT INTO media (
			id, owner_id, username, caption, created_time, post_type,
			images, videos, link, tags
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			caption = EXCLUDED.caption,
			created_time = EXCLUDED.created_time,
			post_type = EXCLUDED.post_type,
			images = EXCLUDED.images,
			videos = EXCLUDED.videos,
			link = EXCLUDED.link,
			tags = EXCLUDED.tags,
			updated_at = now()
		WHERE media.owner_id = EXCLUDED.owner_id`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.OwnerID,
		item.Username,
		item.Caption,
		item.CreatedTime,
		item.PostType,
		assetMap(item.Images),
		assetMap(item.Videos),
		item.Link,
		pq.StringArray(item.Tags),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert media %s: %v", errs.ErrPersistenceFailure, item.ID, err)
	}
	return nil
}

// UpdateRetailLinks overwrites the post's retail-link list in one write.
func (s *MediaStore) UpdateRetailLinks(ctx context.Context, id string, links []domain.RetailLink) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE media SET retail_links = $2, updated_at = now() WHERE id = $1",
		id, linkList(links))
	if err != nil {
		return fmt.Errorf("%w: update retail links: %v", errs.ErrPersistenceFailure, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update retail links: %v", errs.ErrPersistenceFailure, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: media %s", errs.ErrNotFound, id)
	}
	return nil
}

func (s *MediaStore) GetByID(ctx context.Context, id string) (*domain.MediaItem, error) {
	var row mediaRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+mediaColumns+" FROM media WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: media %s", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get media: %v", errs.ErrPersistenceFailure, err)
	}

	item := row.toDomain()
	return &item, nil
}

func (s *MediaStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.MediaItem, error) {
	var rows []mediaRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT "+mediaColumns+" FROM media WHERE owner_id = $1 ORDER BY created_time DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list media: %v", errs.ErrPersistenceFailure, err)
	}

	items := make([]domain.MediaItem, len(rows))
	for i, r := range rows {
		items[i] = r.toDomain()
	}
	return items, nil
}

// ListWithRetailLinks returns a user's shoppable posts only.
func (s *MediaStore) ListWithRetailLinks(ctx context.Context, username string) ([]domain.MediaItem, error) {
	var rows []mediaRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT "+mediaColumns+" FROM media WHERE username = $1 AND retail_links IS NOT NULL ORDER BY created_time DESC",
		username)
	if err != nil {
		return nil, fmt.Errorf("%w: list shoppable media: %v", errs.ErrPersistenceFailure, err)
	}

	items := make([]domain.MediaItem, len(rows))
	for i, r := range rows {
		items[i] = r.toDomain()
	}
	return items, nil
}
