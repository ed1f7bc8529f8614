package domain

import "time"

// MediaItem is one post pulled from the external feed. The ID is the feed's
// own identifier and is globally unique in the store; OwnerID never changes
// after the item is first persisted.
type MediaItem struct {
	ID          string
	OwnerID     string
	Username    string
	Caption     string
	CreatedTime time.Time
	PostType    string // "image" or "video"
	Images      map[string]MediaAsset
	Videos      map[string]MediaAsset
	Link        string
	Tags        []string
	RetailLinks []RetailLink
}

// MediaAsset is a single entry of an image or video variant set, keyed by
// resolution label ("thumbnail", "low_resolution", ...).
type MediaAsset struct {
	URL string `json:"url"`
}

// RetailLink is a user-supplied retailer URL plus the product metadata
// resolved for it. Unresolved links keep only URL.
type RetailLink struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
	Price string `json:"price,omitempty"`
}

// Product is the result of one catalog search.
type Product struct {
	Title string
	Image string
	Price string
}

// Influencer is a tracked user whose feed gets synced. MediaIDs is the
// append-only index of owned media identifiers.
type Influencer struct {
	ID          string
	Username    string
	AccessToken string
	MediaIDs    []string
}
