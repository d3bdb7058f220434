package dto

import (
	"time"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

// AssistRequest carries an operator instruction for the scheduling assistant.
// FileName and FileData are populated from the multipart form, not from JSON.
type AssistRequest struct {
	Message   string `json:"message" validate:"omitempty,max=4000"`
	SessionID string `json:"session_id" validate:"omitempty,max=128"`
	FileName  string `json:"-"`
	FileData  []byte `json:"-"`
}

// ModificationSetResponse is the assistant's answer: prose plus the proposed
// modifications the operator can review, apply or discard.
type ModificationSetResponse struct {
	SessionID     string                `json:"session_id"`
	Response      string                `json:"response"`
	Modifications []models.Modification `json:"modifications"`
	Conflicts     []string              `json:"conflicts"`
	Warnings      []string              `json:"warnings"`
	Degraded      bool                  `json:"degraded"`
	FileURL       string                `json:"file_url,omitempty"`
	RecordCount   int                   `json:"record_count,omitempty"`
}

// NewModificationSetResponse converts a parsed modification set into a DTO.
func NewModificationSetResponse(set models.ModificationSet, sessionID, fileURL string, records int, degraded bool) ModificationSetResponse {
	return ModificationSetResponse{
		SessionID:     sessionID,
		Response:      set.Response,
		Modifications: set.Modifications,
		Conflicts:     set.Conflicts,
		Warnings:      set.Warnings,
		Degraded:      degraded,
		FileURL:       fileURL,
		RecordCount:   records,
	}
}

// ApplyModificationsRequest is the payload for committing reviewed
// modifications to the timetable.
type ApplyModificationsRequest struct {
	Modifications []models.Modification `json:"modifications" validate:"required,min=1"`
}

// ApplyResultResponse reports a committed batch.
type ApplyResultResponse struct {
	BatchID   string    `json:"batch_id"`
	Applied   int       `json:"applied"`
	AppliedAt time.Time `json:"applied_at"`
}

// UndoModificationRequest is the payload for reverting a previously applied
// modification. The client sends back the modification exactly as applied.
type UndoModificationRequest struct {
	Modification *models.Modification `json:"modification" validate:"required"`
}

// UndoResultResponse reports a reverted modification.
type UndoResultResponse struct {
	ModificationID string    `json:"modification_id"`
	Type           string    `json:"type"`
	UndoneAt       time.Time `json:"undone_at"`
}
