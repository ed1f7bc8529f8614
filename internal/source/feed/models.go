package feed

// APIResponse represents one page of the feed API response.
type APIResponse struct {
	Data       []Post     `json:"data"`
	Pagination Pagination `json:"pagination"`
	Meta       Meta       `json:"meta"`
}

type Pagination struct {
	NextURL   string `json:"next_url"`
	NextMaxID string `json:"next_max_id"`
}

type Meta struct {
	Code int `json:"code"`
}

// Post is a raw feed post, pre-canonicalization.
type Post struct {
	ID          string           `json:"id"`
	User        User             `json:"user"`
	Caption     *Caption         `json:"caption"`
	CreatedTime string           `json:"created_time"`
	Images      map[string]Asset `json:"images"`
	Videos      map[string]Asset `json:"videos"`
	Link        string           `json:"link"`
	Tags        []string         `json:"tags"`
	Type        string           `json:"type"`
}

type User struct {
	Username string `json:"username"`
}

type Caption struct {
	Text string `json:"text"`
}

type Asset struct {
	URL string `json:"url"`
}
