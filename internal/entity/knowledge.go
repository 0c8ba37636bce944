package entity

// Chunk is a bounded slice of a document's text. It only lives during ingestion.
type Chunk struct {
	SourceID      string
	SequenceIndex int
	Text          string
}

// EmbeddingVector is opaque outside the embedding and vector store adapters.
type EmbeddingVector []float32

// IndexedRecord is the unit persisted in the vector store.
type IndexedRecord struct {
	ID      string
	Content string
	Source  string
	Vector  EmbeddingVector
}

// UpsertResult is the store's verdict for one record of an upsert call.
type UpsertResult struct {
	ID        string
	Succeeded bool
	Message   string
}

type SearchHit struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

type IngestionStatus string

const (
	IngestionStatusIngested IngestionStatus = "ingested"
	IngestionStatusSkipped  IngestionStatus = "skipped"
	IngestionStatusFailed   IngestionStatus = "failed"
)

// IngestionStage tracks a file through the ingestion state machine
type IngestionStage string

const (
	StageReceived  IngestionStage = "RECEIVED"
	StageExtracted IngestionStage = "EXTRACTED"
	StageChunked   IngestionStage = "CHUNKED"
	StageEmbedded  IngestionStage = "EMBEDDED"
	StageIndexed   IngestionStage = "INDEXED"
	StageSkipped   IngestionStage = "SKIPPED"
	StageFailed    IngestionStage = "FAILED"
)

type IngestionOutcome struct {
	File    string          `json:"file"`
	Status  IngestionStatus `json:"status"`
	Reason  string          `json:"reason,omitempty"`
	Records int             `json:"records,omitempty"`
}

// Outcome reasons
const (
	ReasonUnsupportedExtension = "unsupported extension"
	ReasonEmptyContent         = "empty content"
	ReasonFileTooLarge         = "file exceeds maximum size"
)

// UploadedFile is a file submitted for ingestion.
type UploadedFile struct {
	Name    string
	Size    int64
	Content []byte
}

type RagAnswer struct {
	Query     string      `json:"query"`
	Answer    string      `json:"answer"`
	Citations []SearchHit `json:"documents"`
}

