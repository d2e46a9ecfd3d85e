package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/cimillas/shelfwise/internal/app"
	"github.com/cimillas/shelfwise/internal/domain"
)

const dateLayout = "2006-01-02"

// Circulation is the minimal interface needed for checkouts and returns.
type Circulation interface {
	BorrowBook(ctx context.Context, in app.BorrowBookInput) (domain.Loan, error)
	ReturnBook(ctx context.Context, in app.ReturnBookInput) (app.ReturnBookResult, error)
}

// LoanHistory is the minimal interface needed for loan listings.
type LoanHistory interface {
	ListMemberLoans(ctx context.Context, memberID, status string) ([]domain.LoanView, error)
	ListOverdueLoans(ctx context.Context) ([]domain.OverdueLoan, error)
}

// HandleBorrowings serves /borrowings and everything below it. Callers must
// be authenticated.
func HandleBorrowings(svc Circulation, history LoanHistory) http.HandlerFunc {
	overdue := RequireStaff(handleOverdueLoans(history))

	return func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(r.URL.Path)
		switch {
		case len(parts) == 1 && parts[0] == "borrowings":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleBorrow(svc, w, r)
		case len(parts) == 2 && parts[1] == "me":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleMyLoans(history, w, r)
		case len(parts) == 2 && parts[1] == "overdue":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			overdue.ServeHTTP(w, r)
		case len(parts) == 3 && parts[1] != "" && parts[2] == "return":
			if r.Method != http.MethodPut {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleReturn(svc, parts[1], w, r)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleBorrow(svc Circulation, w http.ResponseWriter, r *http.Request) {
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

	loan, err := svc.BorrowBook(r.Context(), app.BorrowBookInput{
		MemberID: member.ID,
		BookID:   req.BookID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newLoanResponse(loan, ""))
}

func handleReturn(svc Circulation, loanID string, w http.ResponseWriter, r *http.Request) {
	member, ok := currentMember(w, r)
	if !ok {
		return
	}

	res, err := svc.ReturnBook(r.Context(), app.ReturnBookInput{
		LoanID:   loanID,
		MemberID: member.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := returnResponse{
		LoanID:      res.LoanID,
		BookID:      res.BookID,
		ReturnDate:  res.ReturnDate.Format(dateLayout),
		DaysOverdue: res.DaysOverdue,
		FineAmount:  res.FineAmount.InexactFloat64(),
	}
	if res.FulfilledReservationID != "" {
		resp.FulfilledReservationID = &res.FulfilledReservationID
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleMyLoans(history LoanHistory, w http.ResponseWriter, r *http.Request) {
	member, ok := currentMember(w, r)
	if !ok {
		return
	}

	loans, err := history.ListMemberLoans(r.Context(), member.ID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]loanResponse, 0, len(loans))
	for _, l := range loans {
		resp = append(resp, newLoanResponse(l.Loan, l.BookTitle))
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleOverdueLoans(history LoanHistory) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loans, err := history.ListOverdueLoans(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]overdueLoanResponse, 0, len(loans))
		for _, l := range loans {
			resp = append(resp, overdueLoanResponse{
				loanResponse: newLoanResponse(l.Loan, l.BookTitle),
				MemberID:     l.MemberID,
				MemberName:   l.MemberName,
				MemberEmail:  l.MemberEmail,
				DaysOverdue:  l.DaysOverdue,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

type bookRequest struct {
	BookID string `json:"bookId"`
}

type loanResponse struct {
	ID         string  `json:"id"`
	BookID     string  `json:"bookId"`
	BookTitle  string  `json:"bookTitle,omitempty"`
	BorrowDate string  `json:"borrowDate"`
	DueDate    string  `json:"dueDate"`
	ReturnDate *string `json:"returnDate"`
	Status     string  `json:"status"`
	FineAmount float64 `json:"fineAmount"`
}

func newLoanResponse(l domain.Loan, title string) loanResponse {
	resp := loanResponse{
		ID:         l.ID,
		BookID:     l.BookID,
		BookTitle:  title,
		BorrowDate: l.BorrowDate.Format(dateLayout),
		DueDate:    l.DueDate.Format(dateLayout),
		Status:     string(l.Status),
		FineAmount: l.FineAmount.InexactFloat64(),
	}
	if l.ReturnDate != nil {
		s := l.ReturnDate.Format(dateLayout)
		resp.ReturnDate = &s
	}
	return resp
}

type overdueLoanResponse struct {
	loanResponse
	MemberID    string `json:"memberId"`
	MemberName  string `json:"memberName"`
	MemberEmail string `json:"memberEmail"`
	DaysOverdue int    `json:"daysOverdue"`
}

type returnResponse struct {
	LoanID                 string  `json:"loanId"`
	BookID                 string  `json:"bookId"`
	ReturnDate             string  `json:"returnDate"`
	DaysOverdue            int     `json:"daysOverdue"`
	FineAmount             float64 `json:"fineAmount"`
	FulfilledReservationID *string `json:"fulfilledReservationId,omitempty"`
}
