package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/cimillas/shelfwise/internal/domain"
)

const (
	codeMethodNotAllowed       = "method_not_allowed"
	codeNotFound               = "not_found"
	codeInvalidRequestBody     = "invalid_request_body"
	codeMissingRequiredField   = "missing_required_field"
	codeInvalidID              = "invalid_id"
	codeInvalidStatus          = "invalid_status"
	codeUnauthorized           = "unauthorized"
	codeForbidden              = "forbidden"
	codeMembershipInactive     = "membership_inactive"
	codeLimitExceeded          = "limit_exceeded"
	codeHasOverdueBooks        = "has_overdue_books"
	codeOutstandingFines       = "outstanding_fines"
	codeBookUnavailable        = "book_unavailable"
	codeReservedByOther        = "reserved_by_other"
	codeAlreadyReturned        = "already_returned"
	codeBookAlreadyAvailable   = "book_already_available"
	codeDuplicateReservation   = "duplicate_reservation"
	codeReservationNotActive   = "reservation_not_active"
	codeBookNotFound           = "book_not_found"
	codeMemberNotFound         = "member_not_found"
	codeLoanNotFound           = "borrowing_not_found"
	codeReservationNotFound    = "reservation_not_found"
	codeTemporarilyUnavailable = "temporarily_unavailable"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var serviceErrors = []errorMapping{
	{domain.ErrLimitExceeded, http.StatusBadRequest, codeLimitExceeded},
	{domain.ErrHasOverdueBooks, http.StatusBadRequest, codeHasOverdueBooks},
	{domain.ErrOutstandingFines, http.StatusBadRequest, codeOutstandingFines},
	{domain.ErrBookUnavailable, http.StatusBadRequest, codeBookUnavailable},
	{domain.ErrReservedByOther, http.StatusBadRequest, codeReservedByOther},
	{domain.ErrAlreadyReturned, http.StatusBadRequest, codeAlreadyReturned},
	{domain.ErrBookAlreadyAvailable, http.StatusBadRequest, codeBookAlreadyAvailable},
	{domain.ErrDuplicateReservation, http.StatusBadRequest, codeDuplicateReservation},
	{domain.ErrReservationNotActive, http.StatusBadRequest, codeReservationNotActive},
	{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
	{domain.ErrInvalidStatus, http.StatusBadRequest, codeInvalidStatus},
	{domain.ErrBookNotFound, http.StatusNotFound, codeBookNotFound},
	{domain.ErrMemberNotFound, http.StatusNotFound, codeMemberNotFound},
	{domain.ErrLoanNotFound, http.StatusNotFound, codeLoanNotFound},
	{domain.ErrReservationNotFound, http.StatusNotFound, codeReservationNotFound},
	{domain.ErrMembershipInactive, http.StatusForbidden, codeMembershipInactive},
	{domain.ErrTransient, http.StatusServiceUnavailable, codeTemporarilyUnavailable},
}

// writeServiceError maps a service error onto the JSON error envelope.
// Unknown errors are logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, m.err.Error())
			return
		}
	}
	log.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
