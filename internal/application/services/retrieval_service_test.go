package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/application/services"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

func chunk(index int, text string) entities.DocumentChunk {
	return entities.DocumentChunk{
		ID:         "chunk-" + string(rune('a'+index)),
		DocumentID: "doc-1",
		Text:       text,
		ChunkIndex: index,
		Filename:   "referral.pdf",
	}
}

func TestRank_ScoresByWordOverlap(t *testing.T) {
	svc := services.NewRetrievalService(newStubDocumentRepo(), 3)

	chunks := []entities.DocumentChunk{
		chunk(0, "patient has chronic kidney disease with elevated creatinine"),
		chunk(1, "cardiology follow up scheduled next month"),
	}

	ranked := svc.Rank("kidney disease creatinine", chunks, 3)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0, ranked[0].Chunk.ChunkIndex)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)
}

func TestRank_ZeroOverlapExcluded(t *testing.T) {
	svc := services.NewRetrievalService(newStubDocumentRepo(), 3)

	chunks := []entities.DocumentChunk{
		chunk(0, "unrelated cardiology notes"),
	}

	ranked := svc.Rank("kidney function", chunks, 3)
	assert.Empty(t, ranked)
}

func TestRank_PartialOverlapFraction(t *testing.T) {
	svc := services.NewRetrievalService(newStubDocumentRepo(), 3)

	// 2 of 4 distinct query words present.
	chunks := []entities.DocumentChunk{
		chunk(0, "creatinine results pending"),
	}

	ranked := svc.Rank("current creatinine and egfr results", chunks, 3)
	require.Len(t, ranked, 1)
	// query words: current, creatinine, and, egfr, results → 2/5
	assert.InDelta(t, 0.4, ranked[0].Score, 1e-9)
}

func TestRank_MoreOverlapScoresHigher(t *testing.T) {
	svc := services.NewRetrievalService(newStubDocumentRepo(), 3)

	chunks := []entities.DocumentChunk{
		chunk(0, "kidney"),
		chunk(1, "kidney function impairment"),
	}

	ranked := svc.Rank("kidney function", chunks, 3)
	require.Len(t, ranked, 2)
	assert.Equal(t, 1, ranked[0].Chunk.ChunkIndex)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_PhraseBoostCanExceedOne(t *testing.T) {
	svc := services.NewRetrievalService(newStubDocumentRepo(), 3)

	chunks := []entities.DocumentChunk{
		chunk(0, "Notes on Kidney Function: stage 4 impairment."),
		chunk(1, "kidney values and function discussed separately"),
	}

	ranked := svc.Rank("kidney function", chunks, 3)
	require.Len(t, ranked, 2)
	// Both chunks contain every query word; only the first contains the
	// literal phrase.
	assert.Equal(t, 0, ranked[0].Chunk.ChunkIndex)
	assert.InDelta(t, 1.5, ranked[0].Score, 1e-9)
	assert.InDelta(t, 1.0, ranked[1].Score, 1e-9)
}

func TestRank_TieBreaksOnChunkIndex(t *testing.T) {
	svc := services.NewRetrievalService(newStubDocumentRepo(), 3)

	chunks := []entities.DocumentChunk{
		chunk(2, "creatinine elevated"),
		chunk(0, "creatinine stable"),
		chunk(1, "creatinine pending"),
	}

	ranked := svc.Rank("creatinine", chunks, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, 0, ranked[0].Chunk.ChunkIndex)
	assert.Equal(t, 1, ranked[1].Chunk.ChunkIndex)
	assert.Equal(t, 2, ranked[2].Chunk.ChunkIndex)
}

func TestRank_TopKBounds(t *testing.T) {
	svc := services.NewRetrievalService(newStubDocumentRepo(), 2)

	chunks := []entities.DocumentChunk{
		chunk(0, "creatinine"),
		chunk(1, "creatinine"),
		chunk(2, "creatinine"),
	}

	ranked := svc.Rank("creatinine", chunks, 2)
	assert.Len(t, ranked, 2)

	// topK of zero falls back to the configured bound.
	ranked = svc.Rank("creatinine", chunks, 0)
	assert.Len(t, ranked, 2)
}

func TestRank_EmptyInputs(t *testing.T) {
	svc := services.NewRetrievalService(newStubDocumentRepo(), 3)

	assert.Empty(t, svc.Rank("", []entities.DocumentChunk{chunk(0, "text")}, 3))
	assert.Empty(t, svc.Rank("?!", []entities.DocumentChunk{chunk(0, "text")}, 3))
	assert.Empty(t, svc.Rank("creatinine", nil, 3))
}

func TestRetrieveForPatient_LoadsAndRanks(t *testing.T) {
	docRepo := newStubDocumentRepo()
	docRepo.chunks = []entities.DocumentChunk{
		chunk(0, "referral for chronic kidney disease management"),
		chunk(1, "insurance paperwork enclosed"),
	}

	svc := services.NewRetrievalService(docRepo, 3)

	ranked, err := svc.RetrieveForPatient(context.Background(), "uncle-tan-001", "kidney disease")
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "referral.pdf", ranked[0].Chunk.Filename)
}
