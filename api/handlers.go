/*
handlers.go - HTTP API handlers for the claims engine

PURPOSE:
  Exposes the claim lifecycle via REST API. Handles HTTP
  request/response, JSON and multipart parsing, and delegates to the
  lifecycle engine and report generator.

ENDPOINTS:
  Claims:
    POST   /api/claims                  Submit a claim (multipart)
    GET    /api/claims?lecturer_id=N    Lecturer's claims, newest first
    GET    /api/claims/pending          Pending claims, oldest first
    GET    /api/claims/{id}             Get one claim
    POST   /api/claims/{id}/approve     Approve a pending claim
    POST   /api/claims/{id}/reject     Reject a pending claim
    POST   /api/claims/auto-verify      Batch auto-verification sweep

  Documents:
    GET    /api/documents/{id}          Download a supporting document

  Reports:
    GET    /api/reports/approved.csv    Approved claims as CSV
    GET    /api/reports/approved.xlsx   Approved claims as XLSX

  Directory:
    GET    /api/lecturers               List lecturers
    POST   /api/lecturers               Register lecturer
    GET    /api/lecturers/{id}          Get lecturer
    GET    /api/approvers               List approvers
    POST   /api/approvers               Register approver

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, rejected transitions' input
  - 404: Claim/lecturer/document not found
  - 409: Transition refused (claim already decided)
  - 500: Storage and internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - claims/lifecycle.go: The engine these delegate to
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/claims-engine/claims"
	"github.com/warp/claims-engine/report"
)

// maxSubmissionMemory bounds how much of a multipart submission is
// buffered in memory before spilling to temp files.
const maxSubmissionMemory = 8 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine  *claims.Engine
	Store   claims.TxStore
	Files   claims.FileStore
	Reports *report.Generator
	Log     *logrus.Logger
}

// NewHandler creates a handler around the lifecycle engine.
func NewHandler(engine *claims.Engine, store claims.TxStore, files claims.FileStore, log *logrus.Logger) *Handler {
	return &Handler{
		Engine:  engine,
		Store:   store,
		Files:   files,
		Reports: report.NewGenerator(store),
		Log:     log,
	}
}

// =============================================================================
// CLAIM HANDLERS
// =============================================================================

// SubmitClaim accepts a multipart submission: lecturer_id, hours_worked,
// hourly_rate, optional notes, and zero or more "documents" file parts.
// POST /api/claims
func (h *Handler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSubmissionMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form data", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	lecturerID, err := strconv.ParseInt(r.FormValue("lecturer_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lecturer_id", err)
		return
	}
	hours, err := decimal.NewFromString(r.FormValue("hours_worked"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours_worked", err)
		return
	}
	rate, err := decimal.NewFromString(r.FormValue("hourly_rate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hourly_rate", err)
		return
	}

	sub := claims.Submission{
		LecturerID:  lecturerID,
		HoursWorked: hours,
		HourlyRate:  rate,
		Notes:       r.FormValue("notes"),
	}

	var open []io.Closer
	defer func() {
		for _, c := range open {
			c.Close()
		}
	}()
	for _, fh := range r.MultipartForm.File["documents"] {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unreadable upload %s", fh.Filename), err)
			return
		}
		open = append(open, f)
		sub.Files = append(sub.Files, claims.Upload{
			FileName: fh.Filename,
			Size:     fh.Size,
			Content:  f,
		})
	}

	result, err := h.Engine.Submit(r.Context(), sub)
	if err != nil {
		h.writeClaimError(w, "Failed to submit claim", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"claim_id":      result.Claim.ID,
		"lecturer_id":   lecturerID,
		"amount":        result.Claim.Amount.StringFixed(2),
		"auto_approved": result.AutoApproved,
		"skipped_files": len(result.SkippedFiles),
	}).Info("claim submitted")

	writeJSON(w, http.StatusCreated, SubmitClaimResponse{
		Claim:        toClaimDTO(result.Claim),
		AutoApproved: result.AutoApproved,
		SkippedFiles: result.SkippedFiles,
	})
}

// ListClaims returns one lecturer's claims, newest first.
// GET /api/claims?lecturer_id=N
func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	lecturerID, err := strconv.ParseInt(r.URL.Query().Get("lecturer_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid lecturer_id", err)
		return
	}

	// 404 for an unknown lecturer, not an empty list.
	if _, err := h.Store.GetLecturer(r.Context(), lecturerID); err != nil {
		h.writeClaimError(w, "Failed to list claims", err)
		return
	}

	list, err := h.Store.ListClaimsByLecturer(r.Context(), lecturerID)
	if err != nil {
		h.writeClaimError(w, "Failed to list claims", err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTOs(list))
}

// ListPendingClaims returns the review queue, oldest claim date first.
// GET /api/claims/pending
func (h *Handler) ListPendingClaims(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListClaimsByStatus(r.Context(), claims.StatusPending)
	if err != nil {
		h.writeClaimError(w, "Failed to list pending claims", err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTOs(list))
}

// GetClaim returns a single claim with its documents.
// GET /api/claims/{id}
func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid claim id", err)
		return
	}
	claim, err := h.Store.GetClaim(r.Context(), id)
	if err != nil {
		h.writeClaimError(w, "Failed to get claim", err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(claim))
}

// ApproveClaim transitions a pending claim to approved.
// POST /api/claims/{id}/approve
func (h *Handler) ApproveClaim(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid claim id", err)
		return
	}
	var req ApproveClaimRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	if err := h.Engine.Approve(r.Context(), id); err != nil {
		h.writeClaimError(w, "Failed to approve claim", err)
		return
	}

	h.Log.WithFields(logrus.Fields{"claim_id": id, "approver_id": req.ApproverID}).Info("claim approved")

	claim, err := h.Store.GetClaim(r.Context(), id)
	if err != nil {
		h.writeClaimError(w, "Failed to load approved claim", err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(claim))
}

// RejectClaim transitions a pending claim to rejected, recording the
// reviewer's reason in the claim notes.
// POST /api/claims/{id}/reject
func (h *Handler) RejectClaim(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid claim id", err)
		return
	}

	var req RejectClaimRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	if err := h.Engine.Reject(r.Context(), id, req.Reason); err != nil {
		h.writeClaimError(w, "Failed to reject claim", err)
		return
	}

	h.Log.WithFields(logrus.Fields{"claim_id": id, "approver_id": req.ApproverID, "reason": req.Reason}).Info("claim rejected")

	claim, err := h.Store.GetClaim(r.Context(), id)
	if err != nil {
		h.writeClaimError(w, "Failed to load rejected claim", err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(claim))
}

// AutoVerify sweeps every pending claim through the auto-approval
// policy and reports how many were approved.
// POST /api/claims/auto-verify
func (h *Handler) AutoVerify(w http.ResponseWriter, r *http.Request) {
	approved, err := h.Engine.AutoVerifyAll(r.Context())
	if err != nil {
		h.writeClaimError(w, "Auto-verification failed", err)
		return
	}

	h.Log.WithField("approved", approved).Info("auto-verification sweep completed")
	writeJSON(w, http.StatusOK, AutoVerifyResponse{Approved: approved})
}

// =============================================================================
// DOCUMENT HANDLERS
// =============================================================================

// DownloadDocument streams a stored supporting document under its
// original display name.
// GET /api/documents/{id}
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document id", err)
		return
	}

	doc, err := h.Store.GetDocument(r.Context(), id)
	if err != nil {
		h.writeClaimError(w, "Failed to get document", err)
		return
	}

	f, err := h.Files.Open(r.Context(), doc.FilePath)
	if err != nil {
		h.writeClaimError(w, "Failed to open document", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	if _, err := io.Copy(w, f); err != nil {
		h.Log.WithError(err).WithField("document_id", id).Warn("document stream interrupted")
	}
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// ApprovedReportCSV streams the approved-claims report as CSV.
// GET /api/reports/approved.csv
func (h *Handler) ApprovedReportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="approved-claims.csv"`)
	if err := h.Reports.WriteApprovedCSV(r.Context(), w); err != nil {
		h.Log.WithError(err).Error("csv report failed")
	}
}

// ApprovedReportXLSX streams the approved-claims report as a workbook.
// GET /api/reports/approved.xlsx
func (h *Handler) ApprovedReportXLSX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="approved-claims.xlsx"`)
	if err := h.Reports.WriteApprovedXLSX(r.Context(), w); err != nil {
		h.Log.WithError(err).Error("xlsx report failed")
	}
}

// =============================================================================
// LECTURER HANDLERS
// =============================================================================

// ListLecturers returns all lecturers.
// GET /api/lecturers
func (h *Handler) ListLecturers(w http.ResponseWriter, r *http.Request) {
	lecturers, err := h.Store.ListLecturers(r.Context())
	if err != nil {
		h.writeClaimError(w, "Failed to list lecturers", err)
		return
	}
	dtos := make([]LecturerDTO, len(lecturers))
	for i := range lecturers {
		dtos[i] = toLecturerDTO(&lecturers[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLecturer registers a lecturer.
// POST /api/lecturers
func (h *Handler) CreateLecturer(w http.ResponseWriter, r *http.Request) {
	var req CreateLecturerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "full_name is required", nil)
		return
	}

	lecturer := &claims.Lecturer{FullName: req.FullName, Email: req.Email}
	if err := h.Store.CreateLecturer(r.Context(), lecturer); err != nil {
		h.writeClaimError(w, "Failed to create lecturer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLecturerDTO(lecturer))
}

// GetLecturer returns a single lecturer.
// GET /api/lecturers/{id}
func (h *Handler) GetLecturer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lecturer id", err)
		return
	}
	lecturer, err := h.Store.GetLecturer(r.Context(), id)
	if err != nil {
		h.writeClaimError(w, "Failed to get lecturer", err)
		return
	}
	writeJSON(w, http.StatusOK, toLecturerDTO(lecturer))
}

// =============================================================================
// APPROVER HANDLERS
// =============================================================================

// ListApprovers returns all approvers.
// GET /api/approvers
func (h *Handler) ListApprovers(w http.ResponseWriter, r *http.Request) {
	approvers, err := h.Store.ListApprovers(r.Context())
	if err != nil {
		h.writeClaimError(w, "Failed to list approvers", err)
		return
	}
	dtos := make([]ApproverDTO, len(approvers))
	for i := range approvers {
		dtos[i] = toApproverDTO(&approvers[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateApprover registers an approver.
// POST /api/approvers
func (h *Handler) CreateApprover(w http.ResponseWriter, r *http.Request) {
	var req CreateApproverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "full_name is required", nil)
		return
	}

	approver := &claims.Approver{FullName: req.FullName, Role: req.Role, Email: req.Email}
	if err := h.Store.CreateApprover(r.Context(), approver); err != nil {
		h.writeClaimError(w, "Failed to create approver", err)
		return
	}
	writeJSON(w, http.StatusCreated, toApproverDTO(approver))
}

// =============================================================================
// HELPERS
// =============================================================================

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// writeClaimError maps domain errors onto HTTP statuses: missing
// records are 404, refused transitions are 409, other client errors
// are 400, everything else is 500.
func (h *Handler) writeClaimError(w http.ResponseWriter, message string, err error) {
	switch {
	case claims.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, claims.ErrInvalidTransition):
		writeError(w, http.StatusConflict, message, err)
	case claims.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
