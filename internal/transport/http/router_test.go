package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *http.ServeMux {
	return NewRouter(Services{
		Members:            testMembers,
		Circulation:        &stubCirculation{},
		Loans:              &stubLoanHistory{},
		Reservations:       &stubReservations{},
		ReservationHistory: &stubReservationHistory{},
	})
}

func TestNotFoundHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, codeNotFound, decodeError(t, rec).Code)
}

func TestNewRouter_HealthIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestNewRouter_RequiresMember(t *testing.T) {
	for _, path := range []string{"/borrowings/me", "/reservations/me", "/reservations", "/borrowings/overdue"} {
		rec := httptest.NewRecorder()
		newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestNewRouter_AuthenticatedRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/borrowings/me", nil)
	req.Header.Set(MemberIDHeader, "ann")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
