package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"media_syncer/internal/domain"
)

// FeedSource fetches a user's recent posts from the external feed,
// pre-canonicalization.
type FeedSource interface {
	FetchRecent(ctx context.Context, accessToken string) ([]domain.MediaItem, error)
}

// MediaStore persists media items.
type MediaStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	InsertBatch(ctx context.Context, items []domain.MediaItem) error
	Upsert(ctx context.Context, item *domain.MediaItem) error
	UpdateRetailLinks(ctx context.Context, id string, links []domain.RetailLink) error
	GetByID(ctx context.Context, id string) (*domain.MediaItem, error)
}

// InfluencerStore maintains tracked users and their media index.
type InfluencerStore interface {
	AppendMediaIDs(ctx context.Context, influencerID string, mediaIDs []string) error
	ListTracked(ctx context.Context) ([]domain.Influencer, error)
}

// CatalogSearcher resolves a product query against one catalog site.
type CatalogSearcher interface {
	Search(ctx context.Context, siteID, keywords string) (*domain.Product, error)
}

// Publisher emits media events after persistence.
type Publisher interface {
	Publish(ctx context.Context, item *domain.MediaItem, isNew bool) error
	Close() error
}
