package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cimillas/shelfwise/internal/app"
	"github.com/cimillas/shelfwise/internal/domain"
)

// Reservations is the minimal interface needed to place and cancel holds.
type Reservations interface {
	CreateReservation(ctx context.Context, in app.CreateReservationInput) (domain.Reservation, error)
	CancelReservation(ctx context.Context, in app.CancelReservationInput) (domain.Reservation, error)
}

// ReservationHistory is the minimal interface needed for reservation listings.
type ReservationHistory interface {
	ListMemberReservations(ctx context.Context, memberID, status string) ([]domain.ReservationView, error)
	ListActiveReservations(ctx context.Context) ([]domain.ReservationView, error)
}

// HandleReservations serves /reservations and everything below it.
func HandleReservations(svc Reservations, history ReservationHistory) http.HandlerFunc {
	queue := RequireStaff(handleActiveReservations(history))

	return func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(r.URL.Path)
		switch {
		case len(parts) == 1 && parts[0] == "reservations":
			switch r.Method {
			case http.MethodPost:
				handleReserve(svc, w, r)
			case http.MethodGet:
				queue.ServeHTTP(w, r)
			default:
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			}
		case len(parts) == 2 && parts[1] == "me":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleMyReservations(history, w, r)
		case len(parts) == 3 && parts[1] != "" && parts[2] == "cancel":
			if r.Method != http.MethodPut {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleCancel(svc, parts[1], w, r)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleReserve(svc Reservations, w http.ResponseWriter, r *http.Request) {
	member, ok := currentMember(w, r)
	if !ok {
		return
	}

	var req bookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if strings.TrimSpace(req.BookID) == "" {
		writeError(w, http.StatusBadRequest, codeMissingRequiredField, "bookId is required")
		return
	}

	res, err := svc.CreateReservation(r.Context(), app.CreateReservationInput{
		MemberID: member.ID,
		BookID:   req.BookID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newReservationResponse(domain.ReservationView{Reservation: res}))
}

func handleCancel(svc Reservations, reservationID string, w http.ResponseWriter, r *http.Request) {
	member, ok := currentMember(w, r)
	if !ok {
		return
	}

	res, err := svc.CancelReservation(r.Context(), app.CancelReservationInput{
		ReservationID: reservationID,
		MemberID:      member.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cancelResponse{
		ReservationID: res.ID,
		Status:        string(res.Status),
	})
}

func handleMyReservations(history ReservationHistory, w http.ResponseWriter, r *http.Request) {
	member, ok := currentMember(w, r)
	if !ok {
		return
	}

	views, err := history.ListMemberReservations(r.Context(), member.ID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newReservationResponses(views))
}

func handleActiveReservations(history ReservationHistory) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		views, err := history.ListActiveReservations(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newReservationResponses(views))
	})
}

type reservationResponse struct {
	ID              string `json:"id"`
	BookID          string `json:"bookId"`
	BookTitle       string `json:"bookTitle,omitempty"`
	MemberID        string `json:"memberId"`
	MemberName      string `json:"memberName,omitempty"`
	ReservationDate string `json:"reservationDate"`
	ExpiryDate      string `json:"expiryDate"`
	Status          string `json:"status"`
}

func newReservationResponse(v domain.ReservationView) reservationResponse {
	return reservationResponse{
		ID:              v.ID,
		BookID:          v.BookID,
		BookTitle:       v.BookTitle,
		MemberID:        v.MemberID,
		MemberName:      v.MemberName,
		ReservationDate: formatTime(v.ReservationDate),
		ExpiryDate:      formatTime(v.ExpiryDate),
		Status:          string(v.Status),
	}
}

func newReservationResponses(views []domain.ReservationView) []reservationResponse {
	resp := make([]reservationResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, newReservationResponse(v))
	}
	return resp
}

type cancelResponse struct {
	ReservationID string `json:"reservationId"`
	Status        string `json:"status"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
