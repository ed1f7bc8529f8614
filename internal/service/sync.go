package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"media_syncer/internal/canonical"
	"media_syncer/internal/domain"
)

// SyncService runs one fetch-diff-persist pass over a user's feed.
// Concurrent passes for the same user are not safe; the caller serializes
// them (the scheduler runs users one at a time).
type SyncService struct {
	source      FeedSource
	media       MediaStore
	influencers InfluencerStore
	publisher   Publisher
	logger      *slog.Logger
}

func NewSyncService(
	source FeedSource,
	media MediaStore,
	influencers InfluencerStore,
	publisher Publisher,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		source:      source,
		media:       media,
		influencers: influencers,
		publisher:   publisher,
		logger:      logger.With("component", "sync"),
	}
}

// Sync fetches the user's full feed and reconciles it against the store.
// A fetch failure aborts the pass with nothing committed.
func (s *SyncService) Sync(ctx context.Context, user domain.Influencer) (*domain.SyncResult, error) {
	startTime := time.Now()
	s.logger.Info("starting sync", "user", user.Username)

	items, err := s.source.FetchRecent(ctx, user.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}

	s.logger.Info("fetched media from feed", "user", user.Username, "count", len(items))

	stored, err := s.media.CountByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count stored media: %w", err)
	}

	result := &domain.SyncResult{
		UserID:  user.ID,
		Fetched: len(items),
	}

	if stored == 0 {
		err = s.firstSync(ctx, user, items, result)
	} else {
		err = s.incrementalSync(ctx, user, items, result)
	}
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(startTime)

	s.logger.Info("sync completed",
		"user", user.Username,
		"new", result.New,
		"existing", result.Existing,
		"failures", len(result.Failures),
		"duration", result.Duration,
	)

	return result, nil
}

// firstSync treats every fetched item as new: no existence probes, one batch
// insert, one media-index write.
func (s *SyncService) firstSync(ctx context.Context, user domain.Influencer, items []domain.MediaItem, result *domain.SyncResult) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i := range items {
		items[i].OwnerID = user.ID
		canonical.StripItemSignatures(&items[i])
		ids[i] = items[i].ID
	}

	if err := s.media.InsertBatch(ctx, items); err != nil {
		return fmt.Errorf("insert media batch: %w", err)
	}
	if err := s.influencers.AppendMediaIDs(ctx, user.ID, ids); err != nil {
		return fmt.Errorf("append media index: %w", err)
	}

	result.New = len(items)
	s.publishAll(ctx, items, true)
	return nil
}

// incrementalSync probes each fetched item in order and partitions it into
// new and already-known, both in fetch order.
func (s *SyncService) incrementalSync(ctx context.Context, user domain.Influencer, items []domain.MediaItem, result *domain.SyncResult) error {
	var newItems, existing []domain.MediaItem

	for i := range items {
		items[i].OwnerID = user.ID
		canonical.StripItemSignatures(&items[i])

		found, err := s.media.Exists(ctx, items[i].ID)
		if err != nil {
			return fmt.Errorf("probe media %s: %w", items[i].ID, err)
		}
		if found {
			existing = append(existing, items[i])
		} else {
			newItems = append(newItems, items[i])
		}
	}

	if len(newItems) > 0 {
		if err := s.media.InsertBatch(ctx, newItems); err != nil {
			return fmt.Errorf("insert media batch: %w", err)
		}

		ids := make([]string, len(newItems))
		for i := range newItems {
			ids[i] = newItems[i].ID
		}
		if err := s.influencers.AppendMediaIDs(ctx, user.ID, ids); err != nil {
			return fmt.Errorf("append media index: %w", err)
		}
	}

	for i := range existing {
		item := &existing[i]
		if err := s.media.Upsert(ctx, item); err != nil {
			s.logger.Warn("upsert failed",
				"media_id", item.ID,
				"user", user.Username,
				"error", err,
			)
			result.Failures = append(result.Failures, item.ID)
			continue
		}
		if err := s.influencers.AppendMediaIDs(ctx, user.ID, []string{item.ID}); err != nil {
			s.logger.Warn("index append failed",
				"media_id", item.ID,
				"user", user.Username,
				"error", err,
			)
			result.Failures = append(result.Failures, item.ID)
			continue
		}
		s.publishOne(ctx, item, false)
	}

	result.New = len(newItems)
	result.Existing = len(existing)
	s.publishAll(ctx, newItems, true)
	return nil
}

func (s *SyncService) publishAll(ctx context.Context, items []domain.MediaItem, isNew bool) {
	for i := range items {
		s.publishOne(ctx, &items[i], isNew)
	}
}

func (s *SyncService) publishOne(ctx context.Context, item *domain.MediaItem, isNew bool) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, item, isNew); err != nil {
		s.logger.Warn("publish failed", "media_id", item.ID, "error", err)
	}
}

// GetPost returns one stored media item by its feed identifier.
func (s *SyncService) GetPost(ctx context.Context, id string) (*domain.MediaItem, error) {
	item, err := s.media.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get media %s: %w", id, err)
	}
	return item, nil
}
