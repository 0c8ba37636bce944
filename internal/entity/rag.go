package entity

import "encoding/json"

// QueryRequest is the body of POST /search and POST /rag-chat.
// TopK stays raw so that any JSON type can be accepted and policed.
type QueryRequest struct {
	Query json.RawMessage `json:"query"`
	TopK  json.RawMessage `json:"topK"`
}

type SearchResponse struct {
	Query   string      `json:"query"`
	Count   int         `json:"count"`
	Results []SearchHit `json:"results"`
}

type UploadKnowledgeResponse struct {
	Success bool               `json:"success"`
	Results []IngestionOutcome `json:"results"`
}

type StatsResponse struct {
	Metrics  Metrics       `json:"metrics"`
	Settings AdminSettings `json:"settings"`
}

type UpdateSettingsResponse struct {
	OK       bool          `json:"ok"`
	Settings AdminSettings `json:"settings"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// Azure AI Search wire types

type SearchDocumentAction struct {
	Action        string          `json:"@search.action"`
	ID            string          `json:"id"`
	Content       string          `json:"content"`
	Source        string          `json:"source"`
	ContentVector EmbeddingVector `json:"contentVector"`
}

type SearchIndexRequest struct {
	Value []SearchDocumentAction `json:"value"`
}

type SearchIndexResult struct {
	Key          string  `json:"key"`
	Status       bool    `json:"status"`
	ErrorMessage *string `json:"errorMessage"`
	StatusCode   int     `json:"statusCode"`
}

type SearchIndexResponse struct {
	Value []SearchIndexResult `json:"value"`
}

type SearchVectorQuery struct {
	Kind   string          `json:"kind"`
	Vector EmbeddingVector `json:"vector"`
	K      int             `json:"k"`
	Fields string          `json:"fields"`
}

type SearchQueryRequest struct {
	Search        string              `json:"search,omitempty"`
	VectorQueries []SearchVectorQuery `json:"vectorQueries"`
	Select        string              `json:"select,omitempty"`
	Top           int                 `json:"top"`
}

type SearchQueryResult struct {
	Score   float64 `json:"@search.score"`
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Source  string  `json:"source"`
}

type SearchQueryResponse struct {
	Value []SearchQueryResult `json:"value"`
}
