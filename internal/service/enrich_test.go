package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"media_syncer/internal/domain"
	"media_syncer/internal/errs"
	"media_syncer/internal/retailers"
	"media_syncer/internal/service/mocks"
)

type EnrichServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	media   *mocks.MockMediaStore
	catalog *mocks.MockCatalogSearcher

	service *EnrichService
}

func (s *EnrichServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.media = mocks.NewMockMediaStore(s.ctrl)
	s.catalog = mocks.NewMockCatalogSearcher(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.service = NewEnrichService(
		s.media,
		retailers.Default(),
		s.catalog,
		4,
		logger,
	)
}

func (s *EnrichServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestEnrichServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EnrichServiceTestSuite))
}

func (s *EnrichServiceTestSuite) TestEnrich_UnknownDomainKeepsRawURL() {
	ctx := context.Background()
	rawLinks := []string{
		"https://www.chicos.com/p/123.html",
		"https://unknown-domain.com/x",
	}

	s.catalog.EXPECT().Search(gomock.Any(), "1021", "123").Return(&domain.Product{
		Title: "Linen Dress",
		Image: "https://img/1.jpg",
		Price: "129.00",
	}, nil)

	s.media.EXPECT().UpdateRetailLinks(ctx, "post-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, links []domain.RetailLink) error {
			s.Require().Len(links, 2)
			s.Equal(rawLinks[0], links[0].URL)
			s.Equal("Linen Dress", links[0].Title)
			s.Equal("https://img/1.jpg", links[0].Image)
			s.Equal("129.00", links[0].Price)

			// Directory miss degrades the link but keeps its slot.
			s.Equal(rawLinks[1], links[1].URL)
			s.Empty(links[1].Title)
			s.Empty(links[1].Image)
			s.Empty(links[1].Price)
			return nil
		},
	)

	s.NoError(s.service.EnrichRetailLinks(ctx, "post-1", rawLinks))
}

func (s *EnrichServiceTestSuite) TestEnrich_EmptyCatalogResultDegradesOneLink() {
	ctx := context.Background()
	rawLinks := []string{
		"https://www.chicos.com/p/aaa.html",
		"https://www.nordstrom.com/s/bbb",
	}

	s.catalog.EXPECT().Search(gomock.Any(), "1021", "aaa").
		Return(nil, fmt.Errorf("%w: no products", errs.ErrNotFound))
	s.catalog.EXPECT().Search(gomock.Any(), "1034", "bbb").
		Return(&domain.Product{Title: "Boots", Image: "https://img/b.jpg", Price: "240.00"}, nil)

	s.media.EXPECT().UpdateRetailLinks(ctx, "post-2", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, links []domain.RetailLink) error {
			s.Require().Len(links, 2)
			s.Equal(rawLinks[0], links[0].URL)
			s.Empty(links[0].Title)
			s.Equal("Boots", links[1].Title)
			return nil
		},
	)

	s.NoError(s.service.EnrichRetailLinks(ctx, "post-2", rawLinks))
}

func (s *EnrichServiceTestSuite) TestEnrich_OrderAndLengthPreserved() {
	ctx := context.Background()
	rawLinks := []string{
		"https://unknown-one.com/a",
		"https://www.chicos.com/p/keep.html",
		"not a usable url",
		"https://www.zara.com/item/shirt-9.html",
	}

	s.catalog.EXPECT().Search(gomock.Any(), "1021", "keep").
		Return(&domain.Product{Title: "Keep", Price: "10.00"}, nil)
	s.catalog.EXPECT().Search(gomock.Any(), "1163", "shirt-9").
		Return(nil, fmt.Errorf("%w: timeout", errs.ErrUpstreamUnavailable))

	s.media.EXPECT().UpdateRetailLinks(ctx, "post-3", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, links []domain.RetailLink) error {
			s.Require().Len(links, len(rawLinks))
			for i := range rawLinks {
				s.Equal(rawLinks[i], links[i].URL, "slot %d", i)
			}
			s.Empty(links[0].Title)
			s.Equal("Keep", links[1].Title)
			s.Empty(links[2].Title)
			s.Empty(links[3].Title)
			return nil
		},
	)

	s.NoError(s.service.EnrichRetailLinks(ctx, "post-3", rawLinks))
}

func (s *EnrichServiceTestSuite) TestEnrich_SingleWriteEvenWhenAllFail() {
	ctx := context.Background()
	rawLinks := []string{"https://unknown-a.com/x", "https://unknown-b.com/y"}

	s.media.EXPECT().UpdateRetailLinks(ctx, "post-4", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, links []domain.RetailLink) error {
			s.Require().Len(links, 2)
			s.Equal(domain.RetailLink{URL: rawLinks[0]}, links[0])
			s.Equal(domain.RetailLink{URL: rawLinks[1]}, links[1])
			return nil
		},
	)

	s.NoError(s.service.EnrichRetailLinks(ctx, "post-4", rawLinks))
}

func (s *EnrichServiceTestSuite) TestEnrich_WriteFailure() {
	ctx := context.Background()

	s.catalog.EXPECT().Search(gomock.Any(), "1021", "z").
		Return(&domain.Product{Title: "Z"}, nil)
	s.media.EXPECT().UpdateRetailLinks(ctx, "post-5", gomock.Any()).
		Return(errors.New("write failed"))

	err := s.service.EnrichRetailLinks(ctx, "post-5", []string{"https://chicos.com/p/z.html"})

	s.Error(err)
	s.Contains(err.Error(), "update retail links")
}
