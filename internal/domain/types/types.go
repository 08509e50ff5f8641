// Package types contains common read-model types used across the application
package types

// CatalogEntry is the wire shape for one badge in the ordered catalog view.
type CatalogEntry struct {
	Key          string `json:"key"`
	SetID        string `json:"set_id"`
	VersionID    string `json:"version_id"`
	Title        string `json:"title"`
	ImageURL     string `json:"image_url"`
	Status       string `json:"status"`
	DateAdded    string `json:"date_added,omitempty"`
	UsageStats   string `json:"usage_stats,omitempty"`
	Availability string `json:"availability,omitempty"`
	Pending      bool   `json:"pending"`
}

// CollectionSummary reports a viewer's completeness over the collectible catalog.
type CollectionSummary struct {
	UserID     string  `json:"user_id"`
	Collected  int     `json:"collected"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	RankName   string  `json:"rank_name,omitempty"`
	RankColor  string  `json:"rank_color,omitempty"`
	Ranked     bool    `json:"ranked"`
}
