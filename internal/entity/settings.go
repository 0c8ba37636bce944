package entity

import "time"

// AdminSettings are process-wide tunables. They reset on restart.
type AdminSettings struct {
	DefaultTopK     int    `json:"defaultTopK"`
	MaxTopK         int    `json:"maxTopK"`
	EnableLogging   bool   `json:"enableLogging"`
	RagSystemPrompt string `json:"ragSystemPrompt"`
}

// SettingsUpdate is a partial update; nil fields stay unchanged.
type SettingsUpdate struct {
	DefaultTopK     *int
	MaxTopK         *int
	EnableLogging   *bool
	RagSystemPrompt *string
}

type Metrics struct {
	TotalDocumentsIndexed int64      `json:"totalDocumentsIndexed"`
	TotalUploads          int64      `json:"totalUploads"`
	TotalSearchRequests   int64      `json:"totalSearchRequests"`
	TotalRagRequests      int64      `json:"totalRagRequests"`
	ErrorCount            int64      `json:"errorCount"`
	LastSearchAt          *time.Time `json:"lastSearchAt"`
	LastRagAt             *time.Time `json:"lastRagAt"`
	LastUploadAt          *time.Time `json:"lastUploadAt"`
}
