package http

import (
	"net/http"
)

// Services bundles what the router dispatches to.
type Services struct {
	Members            MemberLookup
	Circulation        Circulation
	Loans              LoanHistory
	Reservations       Reservations
	ReservationHistory ReservationHistory
	DB                 Pinger
}

// NewRouter wires every route. Everything except /health requires an
// authenticated member.
func NewRouter(s Services) *http.ServeMux {
	borrowings := Authenticate(s.Members, HandleBorrowings(s.Circulation, s.Loans))
	reservations := Authenticate(s.Members, HandleReservations(s.Reservations, s.ReservationHistory))

	mux := http.NewServeMux()
	mux.Handle("/health", HandleHealth(s.DB))
	mux.Handle("/borrowings", borrowings)
	mux.Handle("/borrowings/", borrowings)
	mux.Handle("/reservations", reservations)
	mux.Handle("/reservations/", reservations)
	mux.Handle("/", NotFoundHandler())
	return mux
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
}
