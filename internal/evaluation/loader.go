package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadGoldenQuestions reads and parses a golden question set from a JSON file.
func LoadGoldenQuestions(path string) ([]GoldenQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden questions file: %w", err)
	}

	var questions []GoldenQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse golden questions: %w", err)
	}

	return questions, nil
}

var validMethods = map[string]bool{
	"database_lookup": true,
	"rag_llm":         true,
	"fallback":        true,
}

// ValidateGoldenQuestions checks that all golden questions have required
// fields and valid values.
func ValidateGoldenQuestions(questions []GoldenQuestion) error {
	seen := make(map[string]struct{}, len(questions))

	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("question at index %d: missing id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("question at index %d: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = struct{}{}

		if q.PatientID == "" {
			return fmt.Errorf("question %q: missing patient_id", q.ID)
		}
		if q.Question == "" {
			return fmt.Errorf("question %q: missing question text", q.ID)
		}
		if q.ExpectedMethod != "" && !validMethods[q.ExpectedMethod] {
			return fmt.Errorf("question %q: invalid expected_method %q", q.ID, q.ExpectedMethod)
		}
		if !q.Difficulty.IsValid() {
			return fmt.Errorf("question %q: invalid difficulty %q (must be easy/medium/hard)", q.ID, q.Difficulty)
		}
	}

	return nil
}
