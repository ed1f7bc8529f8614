package canonical

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media_syncer/internal/domain"
	"media_syncer/internal/errs"
)

func TestStripSignature(t *testing.T) {
	signed := "https://x/vp1/aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa/bbbbbbbb/x.jpg"

	got := StripSignature(signed)
	assert.Equal(t, "https://x/x.jpg", got)
}

func TestStripSignature_Idempotent(t *testing.T) {
	urls := []string{
		"https://x/vp1/aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa/bbbbbbbb/x.jpg",
		"https://cdn.example.com/vpAbC/00112233445566778899aabbccddeeff/12345678/t51/e35/photo.mp4",
		"https://cdn.example.com/t51/e35/photo.jpg", // nothing to strip
	}

	for _, u := range urls {
		once := StripSignature(u)
		twice := StripSignature(once)
		assert.Equal(t, once, twice, "url: %s", u)
	}
}

func TestStripItemSignatures(t *testing.T) {
	item := &domain.MediaItem{
		Images: map[string]domain.MediaAsset{
			"thumbnail":           {URL: "https://x/vp1/aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa/bbbbbbbb/t.jpg"},
			"standard_resolution": {URL: "https://x/s.jpg"},
		},
		Videos: map[string]domain.MediaAsset{
			"low_bandwidth": {URL: "https://x/vp2/cccccccccccccccccccccccccccccccc/dddddddd/v.mp4"},
		},
	}

	StripItemSignatures(item)

	assert.Equal(t, "https://x/t.jpg", item.Images["thumbnail"].URL)
	assert.Equal(t, "https://x/s.jpg", item.Images["standard_resolution"].URL)
	assert.Equal(t, "https://x/v.mp4", item.Videos["low_bandwidth"].URL)
}

func TestNormalizeRetailURL(t *testing.T) {
	host, slug, err := NormalizeRetailURL("https://www.chicos.com/path/product-123.html?x=1")
	require.NoError(t, err)
	assert.Equal(t, "chicos.com", host)
	assert.Equal(t, "product-123", slug)
}

func TestNormalizeRetailURL_SingleSegment(t *testing.T) {
	host, slug, err := NormalizeRetailURL("https://unknown-domain.com/x")
	require.NoError(t, err)
	assert.Equal(t, "unknown-domain.com", host)
	assert.Equal(t, "x", slug)
}

func TestNormalizeRetailURL_Malformed(t *testing.T) {
	cases := []string{
		"",
		"not a url",
		"https://chicos.com",
		"https://chicos.com/",
	}

	for _, raw := range cases {
		_, _, err := NormalizeRetailURL(raw)
		assert.True(t, errors.Is(err, errs.ErrMalformedURL), "url: %q, err: %v", raw, err)
	}
}
