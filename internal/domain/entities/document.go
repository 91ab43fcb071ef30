package entities

import "time"

// Document is a clinical source document (referral letter, discharge
// note) owned by a patient. The file contents themselves live outside
// this system; only chunked text is stored for retrieval.
type Document struct {
	ID           string    `json:"id" db:"id"`
	PatientID    string    `json:"patient_id" db:"patient_id"`
	Filename     string    `json:"filename" db:"filename"`
	DocumentType string    `json:"document_type" db:"document_type"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DocumentChunk is a bounded span of a document's text stored with
// positional metadata for citation. Filename is a read-side join field
// carried so answer sources can cite the parent document without a
// second lookup.
type DocumentChunk struct {
	ID         string `json:"id" db:"id"`
	DocumentID string `json:"document_id" db:"document_id"`
	Text       string `json:"text" db:"chunk_text"`
	ChunkIndex int    `json:"chunk_index" db:"chunk_index"`
	PageNumber *int   `json:"page_number,omitempty" db:"page_number"`
	Filename   string `json:"filename,omitempty" db:"filename"`
}

// RankedChunk pairs a chunk with its lexical relevance score. Scores are
// ordinal, not probabilistic: the substring boost can push them past 1.0.
type RankedChunk struct {
	Chunk DocumentChunk `json:"chunk"`
	Score float64       `json:"score"`
}
