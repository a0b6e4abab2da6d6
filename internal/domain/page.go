package domain

import "time"

// PageContent is what the content extractor derives from a fetched page.
// The zero value is the "nothing could be extracted" result.
type PageContent struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"imageUrl"`
	Excerpt   string    `json:"excerpt"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// IsEmpty reports whether nothing was extracted.
func (p PageContent) IsEmpty() bool {
	return p.Title == "" && p.ImageURL == "" && p.Excerpt == ""
}
