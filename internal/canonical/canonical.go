// Package canonical normalizes URLs coming from the feed and from
// user-supplied retail links.
package canonical

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"media_syncer/internal/domain"
	"media_syncer/internal/errs"
)

// signedSegment matches the CDN signing path: a "vp..." segment followed by
// a 32-character token and an 8-character token, each slash-delimited.
var signedSegment = regexp.MustCompile(`vp[^/]*/[^/]{32}/[^/]{8}/`)

// StripSignature removes the CDN signing segments from a media URL so stored
// URLs are stable across syncs. Idempotent.
func StripSignature(rawURL string) string {
	return signedSegment.ReplaceAllString(rawURL, "")
}

// StripItemSignatures applies StripSignature to every image and video
// variant of the item.
func StripItemSignatures(item *domain.MediaItem) {
	for label, asset := range item.Images {
		asset.URL = StripSignature(asset.URL)
		item.Images[label] = asset
	}
	for label, asset := range item.Videos {
		asset.URL = StripSignature(asset.URL)
		item.Videos[label] = asset
	}
}

// NormalizeRetailURL reduces a raw retailer URL to its registrable host
// (without "www.") and a product slug: the final path segment with any query
// string and trailing file extension removed.
func NormalizeRetailURL(rawURL string) (host, slug string, err error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", errs.ErrMalformedURL, err)
	}
	if u.Hostname() == "" {
		return "", "", fmt.Errorf("%w: no host in %q", errs.ErrMalformedURL, rawURL)
	}

	host = strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	trimmed := strings.Trim(u.EscapedPath(), "/")
	if trimmed == "" {
		return "", "", fmt.Errorf("%w: no path segments in %q", errs.ErrMalformedURL, rawURL)
	}

	segments := strings.Split(trimmed, "/")
	slug = segments[len(segments)-1]
	if ext := path.Ext(slug); ext != "" {
		slug = strings.TrimSuffix(slug, ext)
	}
	if slug == "" {
		return "", "", fmt.Errorf("%w: empty product slug in %q", errs.ErrMalformedURL, rawURL)
	}

	return host, slug, nil
}
