package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"media_syncer/internal/canonical"
	"media_syncer/internal/domain"
	"media_syncer/internal/retailers"
)

// EnrichService resolves a post's raw retail links into product metadata.
type EnrichService struct {
	media     MediaStore
	directory *retailers.Directory
	catalog   CatalogSearcher
	workers   int
	logger    *slog.Logger
}

func NewEnrichService(
	media MediaStore,
	directory *retailers.Directory,
	catalog CatalogSearcher,
	workers int,
	logger *slog.Logger,
) *EnrichService {
	if workers <= 0 {
		workers = 8
	}
	return &EnrichService{
		media:     media,
		directory: directory,
		catalog:   catalog,
		workers:   workers,
		logger:    logger.With("component", "enrich"),
	}
}

// EnrichRetailLinks resolves each raw link concurrently and writes the
// merged list back to the post in a single update, after every resolution
// has settled. The output list always has the same length and order as the
// input; a link that fails at any stage keeps its raw URL with no resolved
// fields.
func (s *EnrichService) EnrichRetailLinks(ctx context.Context, postID string, rawLinks []string) error {
	links := make([]domain.RetailLink, len(rawLinks))

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, raw := range rawLinks {
		i, raw := i, raw
		g.Go(func() error {
			// Each slot is written exactly once, by its own task.
			links[i] = domain.RetailLink{URL: raw}

			product, err := s.resolve(ctx, raw)
			if err != nil {
				s.logger.Warn("link enrichment degraded",
					"post_id", postID,
					"url", raw,
					"error", err,
				)
				return nil
			}

			links[i].Title = product.Title
			links[i].Image = product.Image
			links[i].Price = product.Price
			return nil
		})
	}

	// Barrier: every resolution settles before the merged list is written.
	_ = g.Wait()

	if err := s.media.UpdateRetailLinks(ctx, postID, links); err != nil {
		return fmt.Errorf("update retail links for %s: %w", postID, err)
	}

	s.logger.Info("retail links enriched", "post_id", postID, "links", len(links))
	return nil
}

func (s *EnrichService) resolve(ctx context.Context, rawURL string) (*domain.Product, error) {
	host, slug, err := canonical.NormalizeRetailURL(rawURL)
	if err != nil {
		return nil, err
	}

	entry, err := s.directory.Lookup(host)
	if err != nil {
		return nil, err
	}

	return s.catalog.Search(ctx, entry.SiteID, slug)
}
