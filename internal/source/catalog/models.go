package catalog

// searchRequest is the product-search request body. Keywords are matched
// against product URLs, scoped to the given catalog sites.
type searchRequest struct {
	Filter searchFilter `json:"filter"`
}

type searchFilter struct {
	Keywords       string   `json:"keywords"`
	KeywordsFields []string `json:"keywords_fields"`
	SiteIDs        []string `json:"site_ids"`
}

type searchResponse struct {
	Products []productResult `json:"products"`
}

type productResult struct {
	Title string `json:"title"`
	Image string `json:"image"`
	Price string `json:"price"`
}
