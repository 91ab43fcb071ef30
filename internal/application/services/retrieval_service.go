package services

import (
	"context"
	"sort"
	"strings"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/repositories"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/utils"
)

// DefaultTopK bounds how many ranked chunks the retriever returns when no
// limit is configured.
const DefaultTopK = 3

// phraseBoost is added when the whole query appears verbatim inside a
// chunk. It can push scores past 1.0; the scale is ordinal.
const phraseBoost = 0.5

// RetrievalService ranks a patient's document chunks against a free-text
// question using lexical word overlap. No embeddings, no external index:
// the corpus per patient is a handful of documents and a linear scan is
// both exact and fast enough.
type RetrievalService struct {
	documentRepo repositories.DocumentRepository
	topK         int
}

// NewRetrievalService creates a new retrieval service. A topK of zero or
// less falls back to the default.
func NewRetrievalService(documentRepo repositories.DocumentRepository, topK int) *RetrievalService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrievalService{
		documentRepo: documentRepo,
		topK:         topK,
	}
}

// TopK returns the configured result bound.
func (s *RetrievalService) TopK() int {
	return s.topK
}

// RetrieveForPatient loads every stored chunk for a patient and ranks it
// against the query, returning at most the configured top-K.
func (s *RetrievalService) RetrieveForPatient(ctx context.Context, patientID, query string) ([]entities.RankedChunk, error) {
	chunks, err := s.documentRepo.ListChunksByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.Rank(query, chunks, s.topK), nil
}

// Rank scores chunks by word overlap with the query and returns the top-K
// by descending score. Scoring:
//
//	score = |query words ∩ chunk words| / |query words|
//
// plus a fixed boost when the lower-cased query appears verbatim in the
// chunk. Chunks with no overlap are dropped before the boost is applied.
// Ties break on ascending ChunkIndex so results are stable across runs.
// An empty query or empty chunk set yields an empty result, never an error.
func (s *RetrievalService) Rank(query string, chunks []entities.DocumentChunk, topK int) []entities.RankedChunk {
	if topK <= 0 {
		topK = s.topK
	}

	queryWords := utils.WordSet(query)
	if len(queryWords) == 0 || len(chunks) == 0 {
		return []entities.RankedChunk{}
	}

	loweredQuery := strings.ToLower(query)
	ranked := make([]entities.RankedChunk, 0, len(chunks))

	for _, chunk := range chunks {
		chunkWords := utils.WordSet(chunk.Text)

		overlap := 0
		for w := range queryWords {
			if _, ok := chunkWords[w]; ok {
				overlap++
			}
		}

		score := float64(overlap) / float64(len(queryWords))
		if score <= 0 {
			continue
		}
		if strings.Contains(strings.ToLower(chunk.Text), loweredQuery) {
			score += phraseBoost
		}

		ranked = append(ranked, entities.RankedChunk{Chunk: chunk, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Chunk.ChunkIndex < ranked[j].Chunk.ChunkIndex
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}
