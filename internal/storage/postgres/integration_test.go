//go:build integration

package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"media_syncer/internal/domain"
	"media_syncer/internal/errs"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB

	media       *MediaStore
	influencers *InfluencerStore
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_media.up.sql"),
			filepath.Join(migrationsPath, "002_create_influencers.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db

	s.media = NewMediaStore(db)
	s.influencers = NewInfluencerStore(db)
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, err := s.db.Exec("TRUNCATE media; TRUNCATE influencers")
	s.Require().NoError(err)

	_, err = s.db.Exec(
		"INSERT INTO influencers (id, username, access_token) VALUES ($1, $2, $3)",
		"u-1", "nick", "tok")
	s.Require().NoError(err)
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func testItem(id string) domain.MediaItem {
	return domain.MediaItem{
		ID:          id,
		OwnerID:     "u-1",
		Username:    "nick",
		Caption:     "caption " + id,
		CreatedTime: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		PostType:    "image",
		Images: map[string]domain.MediaAsset{
			"thumbnail": {URL: "https://x/" + id + ".jpg"},
		},
		Tags: []string{"ootd", "style"},
	}
}

func (s *PostgresIntegrationSuite) TestInsertBatchAndExists() {
	items := []domain.MediaItem{testItem("A"), testItem("B")}

	s.Require().NoError(s.media.InsertBatch(s.ctx, items))

	found, err := s.media.Exists(s.ctx, "A")
	s.NoError(err)
	s.True(found)

	found, err = s.media.Exists(s.ctx, "Z")
	s.NoError(err)
	s.False(found)

	count, err := s.media.CountByOwner(s.ctx, "u-1")
	s.NoError(err)
	s.Equal(2, count)
}

func (s *PostgresIntegrationSuite) TestGetByID_RoundTrip() {
	item := testItem("A")
	item.Videos = map[string]domain.MediaAsset{"low_bandwidth": {URL: "https://x/a.mp4"}}
	item.PostType = "video"

	s.Require().NoError(s.media.InsertBatch(s.ctx, []domain.MediaItem{item}))

	got, err := s.media.GetByID(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal("caption A", got.Caption)
	s.Equal("video", got.PostType)
	s.Equal("https://x/A.jpg", got.Images["thumbnail"].URL)
	s.Equal("https://x/a.mp4", got.Videos["low_bandwidth"].URL)
	s.Equal([]string{"ootd", "style"}, got.Tags)
}

func (s *PostgresIntegrationSuite) TestGetByID_NotFound() {
	_, err := s.media.GetByID(s.ctx, "missing")
	s.True(errors.Is(err, errs.ErrNotFound))
}

func (s *PostgresIntegrationSuite) TestUpsert_UpdatesExisting() {
	item := testItem("A")
	s.Require().NoError(s.media.InsertBatch(s.ctx, []domain.MediaItem{item}))

	item.Caption = "edited caption"
	s.Require().NoError(s.media.Upsert(s.ctx, &item))

	got, err := s.media.GetByID(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal("edited caption", got.Caption)
}

func (s *PostgresIntegrationSuite) TestUpsert_DoesNotTouchRetailLinks() {
	item := testItem("A")
	s.Require().NoError(s.media.InsertBatch(s.ctx, []domain.MediaItem{item}))

	links := []domain.RetailLink{
		{URL: "https://chicos.com/p/1.html", Title: "Dress", Price: "129.00"},
		{URL: "https://unknown.com/x"},
	}
	s.Require().NoError(s.media.UpdateRetailLinks(s.ctx, "A", links))

	item.Caption = "resynced"
	s.Require().NoError(s.media.Upsert(s.ctx, &item))

	got, err := s.media.GetByID(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal("resynced", got.Caption)
	s.Equal(links, got.RetailLinks)
}

func (s *PostgresIntegrationSuite) TestUpdateRetailLinks_NotFound() {
	err := s.media.UpdateRetailLinks(s.ctx, "missing", []domain.RetailLink{{URL: "https://x/y"}})
	s.True(errors.Is(err, errs.ErrNotFound))
}

func (s *PostgresIntegrationSuite) TestListWithRetailLinks() {
	s.Require().NoError(s.media.InsertBatch(s.ctx, []domain.MediaItem{testItem("A"), testItem("B")}))
	s.Require().NoError(s.media.UpdateRetailLinks(s.ctx, "A", []domain.RetailLink{{URL: "https://chicos.com/p/1.html"}}))

	items, err := s.media.ListWithRetailLinks(s.ctx, "nick")
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("A", items[0].ID)
}

func (s *PostgresIntegrationSuite) TestAppendMediaIDs_SetSemantics() {
	s.Require().NoError(s.influencers.AppendMediaIDs(s.ctx, "u-1", []string{"A", "B"}))
	s.Require().NoError(s.influencers.AppendMediaIDs(s.ctx, "u-1", []string{"B", "C"}))

	user, err := s.influencers.GetByUsername(s.ctx, "nick")
	s.Require().NoError(err)
	s.Equal([]string{"A", "B", "C"}, user.MediaIDs)
}

func (s *PostgresIntegrationSuite) TestAppendMediaIDs_UnknownInfluencer() {
	err := s.influencers.AppendMediaIDs(s.ctx, "ghost", []string{"A"})
	s.True(errors.Is(err, errs.ErrNotFound))
}

func (s *PostgresIntegrationSuite) TestListTracked() {
	_, err := s.db.Exec(
		"INSERT INTO influencers (id, username, access_token) VALUES ($1, $2, $3)",
		"u-2", "untracked", "")
	s.Require().NoError(err)

	users, err := s.influencers.ListTracked(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal("nick", users[0].Username)
}
