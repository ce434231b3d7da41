package models

// ContentType classifies a search result
type ContentType string

const (
	ContentTypeArticle  ContentType = "article"
	ContentTypeVideo    ContentType = "video"
	ContentTypeProduct  ContentType = "product"
	ContentTypeService  ContentType = "service"
	ContentTypeDocument ContentType = "document"
)

// SearchResult is produced fresh per query and never persisted
type SearchResult struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	URL            string      `json:"url"`
	Description    string      `json:"description"`
	Domain         string      `json:"domain"`
	Favicon        string      `json:"favicon,omitempty"`
	PublishedDate  string      `json:"publishedDate,omitempty"`
	ContentType    ContentType `json:"contentType"`
	RelevanceScore int         `json:"relevanceScore"`
}

// SearchHistoryLimit caps the number of remembered queries
const SearchHistoryLimit = 20
