package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const floatTolerance = 1e-9

func TestRecallAtK_AllRelevantRetrieved(t *testing.T) {
	relevant := []string{"chunk-1", "chunk-2"}
	retrieved := []string{"chunk-1", "chunk-2", "chunk-9"}

	assert.InDelta(t, 1.0, RecallAtK(relevant, retrieved, 3), floatTolerance)
}

func TestRecallAtK_PartialRecall(t *testing.T) {
	relevant := []string{"chunk-1", "chunk-2", "chunk-3", "chunk-4"}
	retrieved := []string{"chunk-1", "chunk-9", "chunk-2"}

	// 2 of 4 relevant chunks surfaced.
	assert.InDelta(t, 0.5, RecallAtK(relevant, retrieved, 3), floatTolerance)
}

func TestRecallAtK_EmptyRetrieved(t *testing.T) {
	assert.InDelta(t, 0.0, RecallAtK([]string{"chunk-1"}, []string{}, 3), floatTolerance)
}

func TestRecallAtK_NoLabels(t *testing.T) {
	// Recall is undefined without labels; we return 0.
	assert.InDelta(t, 0.0, RecallAtK([]string{}, []string{"chunk-1"}, 3), floatTolerance)
}

func TestRecallAtK_CutoffExcludesLateHits(t *testing.T) {
	relevant := []string{"chunk-1", "chunk-5"}
	// chunk-5 sits past the cutoff.
	retrieved := []string{"chunk-1", "chunk-2", "chunk-3", "chunk-5"}

	assert.InDelta(t, 0.5, RecallAtK(relevant, retrieved, 3), floatTolerance)
}

func TestRecallAtK_FewerRetrievedThanK(t *testing.T) {
	assert.InDelta(t, 0.5, RecallAtK([]string{"chunk-1", "chunk-2"}, []string{"chunk-2"}, 10), floatTolerance)
}

func TestMRRAtK_FirstHit(t *testing.T) {
	assert.InDelta(t, 1.0, MRRAtK([]string{"chunk-1"}, []string{"chunk-1", "chunk-2"}, 3), floatTolerance)
}

func TestMRRAtK_ThirdHit(t *testing.T) {
	got := MRRAtK([]string{"chunk-7"}, []string{"chunk-1", "chunk-2", "chunk-7"}, 3)
	assert.InDelta(t, 1.0/3.0, got, floatTolerance)
}

func TestMRRAtK_HitBeyondCutoff(t *testing.T) {
	got := MRRAtK([]string{"chunk-4"}, []string{"chunk-1", "chunk-2", "chunk-3", "chunk-4"}, 3)
	assert.InDelta(t, 0.0, got, floatTolerance)
}

func TestMRRAtK_EmptyInputs(t *testing.T) {
	assert.InDelta(t, 0.0, MRRAtK([]string{}, []string{"chunk-1"}, 3), floatTolerance)
	assert.InDelta(t, 0.0, MRRAtK([]string{"chunk-1"}, []string{}, 3), floatTolerance)
}

func TestMRRAtK_FirstRelevantWins(t *testing.T) {
	relevant := []string{"chunk-1", "chunk-2"}
	retrieved := []string{"chunk-9", "chunk-2", "chunk-1"}

	// chunk-2 at rank 2 is the first relevant hit.
	assert.InDelta(t, 0.5, MRRAtK(relevant, retrieved, 3), floatTolerance)
}
