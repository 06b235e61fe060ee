package models

import (
	"strings"
	"time"
)

// ResponseStatus distinguishes an as-generated response from one the reviewer
// has edited.
type ResponseStatus string

const (
	ResponseStatusGenerated ResponseStatus = "generated"
	ResponseStatusEdited    ResponseStatus = "edited"
)

// SourceRef is one retrieval hit that grounded a generated response: the title
// of the knowledge entry and its similarity score.
type SourceRef struct {
	Title      string  `json:"title" validate:"required,min=1,max=500"`
	Similarity float64 `json:"similarity" validate:"min=0,max=1"`
}

// GeneratedResponse is the AI-produced and/or human-edited answer to one
// question. The draft is immutable after creation; edits flow through the
// review engine's save operation only.
type GeneratedResponse struct {
	QuestionID    string         `json:"question_id"`
	Draft         string         `json:"draft"`
	EditedContent string         `json:"edited_content,omitempty"`
	EditedHTML    string         `json:"edited_html,omitempty"`
	Tone          string         `json:"tone,omitempty"`
	Confidence    int            `json:"confidence"`
	SourcesUsed   []SourceRef    `json:"sources_used,omitempty"`
	WordCount     int            `json:"word_count"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Status        ResponseStatus `json:"status"`
}

// CurrentText returns the edited content when present, otherwise the draft.
func (r *GeneratedResponse) CurrentText() string {
	if r.EditedContent != "" {
		return r.EditedContent
	}

	return r.Draft
}

// CountWords returns the number of whitespace-separated tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
