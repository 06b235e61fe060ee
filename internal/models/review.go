package models

// SelectQuestionRequest opens a question for review. The previously open
// question is silently saved first.
type SelectQuestionRequest struct {
	QuestionID string `json:"question_id" validate:"required,min=1,max=255,no_null_bytes"`
}

// SaveResponseRequest persists the selected question's edits. EditedContent
// and EditedHTML, when present, replace the staged editor content before the
// save runs; absent fields leave the staged content untouched.
type SaveResponseRequest struct {
	QuestionID    string  `json:"question_id,omitempty" validate:"omitempty,min=1,max=255,no_null_bytes"`
	EditedContent *string `json:"edited_content,omitempty" validate:"omitempty,no_null_bytes"`
	EditedHTML    *string `json:"edited_html,omitempty" validate:"omitempty,no_null_bytes"`
}

// UpdateViewRequest changes the review list's status filter and/or sort mode.
// Absent fields keep their current value.
type UpdateViewRequest struct {
	Filter *string `json:"filter,omitempty" validate:"omitempty,max=50"`
	Sort   *string `json:"sort,omitempty" validate:"omitempty,sort_mode"`
}
