package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cimillas/shelfwise/internal/domain"
)

// MemberIDHeader carries the caller identity established by the gateway.
const MemberIDHeader = "X-Member-ID"

// MemberLookup resolves the authenticated caller.
type MemberLookup interface {
	GetMember(ctx context.Context, memberID string) (domain.Member, error)
}

type memberKey struct{}

// WithMember stores the caller in ctx.
func WithMember(ctx context.Context, m domain.Member) context.Context {
	return context.WithValue(ctx, memberKey{}, m)
}

func memberFromContext(ctx context.Context) (domain.Member, bool) {
	m, ok := ctx.Value(memberKey{}).(domain.Member)
	return m, ok
}

// Authenticate loads the member named by X-Member-ID. Unknown callers get 401,
// members whose membership is not Active get 403.
func Authenticate(lookup MemberLookup, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		memberID := strings.TrimSpace(r.Header.Get(MemberIDHeader))
		if memberID == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		member, err := lookup.GetMember(r.Context(), memberID)
		if err != nil {
			if errors.Is(err, domain.ErrMemberNotFound) || errors.Is(err, domain.ErrInvalidID) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
				return
			}
			writeServiceError(w, err)
			return
		}
		if !member.IsActive() {
			writeError(w, http.StatusForbidden, codeMembershipInactive, domain.ErrMembershipInactive.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithMember(r.Context(), member)))
	})
}

// RequireStaff rejects callers that are not library staff.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		member, ok := memberFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		if !member.IsStaff() {
			writeError(w, http.StatusForbidden, codeForbidden, "staff access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// currentMember returns the caller, writing a 401 when the request was not
// authenticated.
func currentMember(w http.ResponseWriter, r *http.Request) (domain.Member, bool) {
	member, ok := memberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
	}
	return member, ok
}
