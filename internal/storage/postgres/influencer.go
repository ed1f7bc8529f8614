package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"media_syncer/internal/domain"
	"media_syncer/internal/errs"
)

type InfluencerStore struct {
	db *sqlx.DB
}

func NewInfluencerStore(db *sqlx.DB) *InfluencerStore {
	return &InfluencerStore{db: db}
}

type influencerRow struct {
	ID          string         `db:"id"`
	Username    string         `db:"username"`
	AccessToken string         `db:"access_token"`
	MediaIDs    pq.StringArray `db:"media_ids"`
}

func (r influencerRow) toDomain() domain.Influencer {
	return domain.Influencer{
		ID:          r.ID,
		Username:    r.Username,
		AccessToken: r.AccessToken,
		MediaIDs:    r.MediaIDs,
	}
}

// AppendMediaIDs adds identifiers to the user's media index with set
// semantics: already-present identifiers are skipped, existing order is
// preserved, nothing is ever removed. One write per call.
func (s *InfluencerStore) AppendMediaIDs(ctx context.Context, influencerID string, mediaIDs []string) error {
	if len(mediaIDs) == 0 {
		return nil
	}

	query := `
		UPDATE influencers
		SET media_ids = array_cat(
			media_ids,
			(SELECT coalesce(array_agg(v), '{}')
			 FROM unnest($2::text[]) AS v
			 WHERE NOT (v = ANY(influencers.media_ids)))
		)
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, influencerID, pq.StringArray(mediaIDs))
	if err != nil {
		return fmt.Errorf("%w: append media index: %v", errs.ErrPersistenceFailure, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: append media index: %v", errs.ErrPersistenceFailure, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: influencer %s", errs.ErrNotFound, influencerID)
	}
	return nil
}

// ListTracked returns every influencer with a feed access token on file.
func (s *InfluencerStore) ListTracked(ctx context.Context) ([]domain.Influencer, error) {
	var rows []influencerRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, username, access_token, media_ids FROM influencers WHERE access_token <> '' ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("%w: list influencers: %v", errs.ErrPersistenceFailure, err)
	}

	users := make([]domain.Influencer, len(rows))
	for i, r := range rows {
		users[i] = r.toDomain()
	}
	return users, nil
}

func (s *InfluencerStore) GetByUsername(ctx context.Context, username string) (*domain.Influencer, error) {
	var row influencerRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, username, access_token, media_ids FROM influencers WHERE username = $1", username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: influencer %s", errs.ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get influencer: %v", errs.ErrPersistenceFailure, err)
	}

	user := row.toDomain()
	return &user, nil
}
