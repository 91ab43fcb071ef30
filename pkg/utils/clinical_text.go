package utils

import (
	"strings"
)

// QuestionTopic classifies a free-text clinical question into the coarse
// categories the fallback synthesizer can answer from structured data alone.
type QuestionTopic string

const (
	TopicKidney  QuestionTopic = "kidney"
	TopicSummary QuestionTopic = "summary"
	TopicVitals  QuestionTopic = "vitals"
	TopicLabs    QuestionTopic = "labs"
	TopicGeneral QuestionTopic = "general"
)

// topicKeywords maps each topic to the phrases that trigger it. Order
// matters: the first topic with a matching phrase wins, so more specific
// topics come before generic ones.
var topicKeywords = []struct {
	topic QuestionTopic
	terms []string
}{
	{TopicKidney, []string{"kidney", "renal", "creatinine"}},
	{TopicSummary, []string{"summary", "overview"}},
	{TopicVitals, []string{"vital", "blood pressure", "heart rate", "temperature"}},
	{TopicLabs, []string{"lab", "test result", "blood work"}},
}

// DetectQuestionTopic returns the first topic whose keywords appear in the
// question, or TopicGeneral when none match. Matching is case-insensitive
// phrase containment.
func DetectQuestionTopic(question string) QuestionTopic {
	lowered := strings.ToLower(question)
	for _, entry := range topicKeywords {
		for _, term := range entry.terms {
			if strings.Contains(lowered, term) {
				return entry.topic
			}
		}
	}
	return TopicGeneral
}

// MentionsTopic reports whether any of the topic's keywords appear in the
// question. Unlike DetectQuestionTopic this checks one topic in isolation,
// so the fallback synthesizer can try branches in sequence: a kidney
// question with no kidney labs still gets its summary branch considered.
func MentionsTopic(question string, topic QuestionTopic) bool {
	lowered := strings.ToLower(question)
	for _, entry := range topicKeywords {
		if entry.topic != topic {
			continue
		}
		for _, term := range entry.terms {
			if strings.Contains(lowered, term) {
				return true
			}
		}
	}
	return false
}

// Tokenize lower-cases text and splits it into words on any run of
// non-alphanumeric characters, so "Creatinine: 4.2" yields
// ["creatinine", "4", "2"]. Deterministic and allocation-light; this is
// the single tokenization used for both queries and chunks.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	words := make([]string, 0, 16)

	start := -1
	for i, ch := range lowered {
		isAlphaNum := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
		if isAlphaNum {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, lowered[start:i])
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, lowered[start:])
	}

	return words
}

// WordSet returns the set of distinct tokens in text.
func WordSet(text string) map[string]struct{} {
	words := Tokenize(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
