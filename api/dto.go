/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY FIELDS:
  Hours, rates and amounts travel as JSON strings ("12.50"), never as
  floats. Clients that want numbers can parse; clients that want exact
  values get them.

SEE ALSO:
  - handlers.go: Uses these types
  - claims/types.go: Domain model these project
*/
package api

import (
	"time"

	"github.com/warp/claims-engine/claims"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ClaimDTO represents a claim in API responses.
type ClaimDTO struct {
	ID           int64         `json:"id"`
	LecturerID   int64         `json:"lecturer_id"`
	LecturerName string        `json:"lecturer_name,omitempty"`
	ClaimDate    string        `json:"claim_date"`
	HoursWorked  string        `json:"hours_worked"`
	HourlyRate   string        `json:"hourly_rate"`
	Amount       string        `json:"amount"`
	Notes        string        `json:"notes,omitempty"`
	Status       string        `json:"status"`
	Documents    []DocumentDTO `json:"documents"`
	CreatedAt    string        `json:"created_at,omitempty"`
	UpdatedAt    string        `json:"updated_at,omitempty"`
}

// DocumentDTO represents a supporting document.
type DocumentDTO struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
}

// SubmitClaimResponse is returned after a claim submission.
type SubmitClaimResponse struct {
	Claim        ClaimDTO `json:"claim"`
	AutoApproved bool     `json:"auto_approved"`
	SkippedFiles []string `json:"skipped_files,omitempty"`
}

// ApproveClaimRequest optionally identifies the acting approver for
// the audit log.
type ApproveClaimRequest struct {
	ApproverID int64 `json:"approver_id,omitempty"`
}

// RejectClaimRequest carries the reviewer's rejection reason.
type RejectClaimRequest struct {
	Reason     string `json:"reason"`
	ApproverID int64  `json:"approver_id,omitempty"`
}

// AutoVerifyResponse reports a batch auto-verification outcome.
type AutoVerifyResponse struct {
	Approved int `json:"approved"`
}

// LecturerDTO represents a lecturer in API responses.
type LecturerDTO struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// CreateLecturerRequest is the request to register a lecturer.
type CreateLecturerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ApproverDTO represents an approver in API responses.
type ApproverDTO struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

// CreateApproverRequest is the request to register an approver.
type CreateApproverRequest struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toClaimDTO(c *claims.Claim) ClaimDTO {
	docs := make([]DocumentDTO, len(c.Documents))
	for i, d := range c.Documents {
		docs[i] = DocumentDTO{ID: d.ID, FileName: d.FileName}
	}
	return ClaimDTO{
		ID:           c.ID,
		LecturerID:   c.LecturerID,
		LecturerName: c.LecturerName,
		ClaimDate:    c.ClaimDate.Format("2006-01-02"),
		HoursWorked:  c.HoursWorked.String(),
		HourlyRate:   c.HourlyRate.String(),
		Amount:       c.Amount.StringFixed(2),
		Notes:        c.Notes,
		Status:       string(c.Status),
		Documents:    docs,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
}

func toClaimDTOs(cs []claims.Claim) []ClaimDTO {
	dtos := make([]ClaimDTO, len(cs))
	for i := range cs {
		dtos[i] = toClaimDTO(&cs[i])
	}
	return dtos
}

func toLecturerDTO(l *claims.Lecturer) LecturerDTO {
	return LecturerDTO{ID: l.ID, FullName: l.FullName, Email: l.Email}
}

func toApproverDTO(a *claims.Approver) ApproverDTO {
	return ApproverDTO{ID: a.ID, FullName: a.FullName, Role: a.Role, Email: a.Email}
}
