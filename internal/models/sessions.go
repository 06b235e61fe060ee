package models

import (
	"time"

	"github.com/google/uuid"
)

// RFPQuestion is an atomic question extracted from an RFP document by the
// external parsing service. Immutable once loaded into a session.
type RFPQuestion struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Category  string `json:"category"`
	Mandatory bool   `json:"mandatory"`
}

// RFPSession is one RFP document's full set of extracted questions, generated
// responses, and feedback.
type RFPSession struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Organization string              `json:"organization"`
	Deadline     *time.Time          `json:"deadline,omitempty"`
	Questions    []RFPQuestion       `json:"questions"`
	Responses    []GeneratedResponse `json:"responses,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// CompanyProfile holds the answering organization's profile, used only for
// display defaults.
type CompanyProfile struct {
	Name string `json:"name"`
}

// CreateSessionRequest is the payload the external document parser posts after
// extracting questions from an uploaded RFP.
type CreateSessionRequest struct {
	Title        string                   `json:"title" validate:"required,min=1,max=500,no_null_bytes"`
	Organization string                   `json:"organization" validate:"omitempty,max=500,no_null_bytes"`
	Deadline     *time.Time               `json:"deadline,omitempty"`
	Questions    []CreateQuestionRequest  `json:"questions" validate:"required,min=1,dive"`
	Responses    []CreateResponseRequest  `json:"responses,omitempty" validate:"omitempty,dive"`
}

// CreateQuestionRequest is one extracted question within a CreateSessionRequest.
type CreateQuestionRequest struct {
	ID        string `json:"id" validate:"required,min=1,max=255,no_null_bytes"`
	Text      string `json:"text" validate:"required,min=1,no_null_bytes"`
	Category  string `json:"category" validate:"omitempty,max=255,no_null_bytes"`
	Mandatory bool   `json:"mandatory"`
}

// CreateResponseRequest is one generated response within a CreateSessionRequest.
type CreateResponseRequest struct {
	QuestionID  string      `json:"question_id" validate:"required,min=1,max=255,no_null_bytes"`
	Draft       string      `json:"draft" validate:"required,min=1"`
	Tone        string      `json:"tone" validate:"omitempty,max=100"`
	Confidence  int         `json:"confidence" validate:"min=0,max=100"`
	SourcesUsed []SourceRef `json:"sources_used,omitempty" validate:"omitempty,dive"`
}
