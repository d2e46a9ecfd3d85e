package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cimillas/shelfwise/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubMemberLookup map[string]domain.Member

func (s stubMemberLookup) GetMember(_ context.Context, id string) (domain.Member, error) {
	if id == "broken" {
		return domain.Member{}, errors.New("connection reset")
	}
	m, ok := s[id]
	if !ok {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	return m, nil
}

var testMembers = stubMemberLookup{
	"ann":   {ID: "ann", Name: "Ann", Status: domain.MembershipStatusActive, Type: domain.MembershipTypeMember},
	"sue":   {ID: "sue", Name: "Sue", Status: domain.MembershipStatusSuspended, Type: domain.MembershipTypeMember},
	"staff": {ID: "staff", Name: "Librarian", Status: domain.MembershipStatusActive, Type: domain.MembershipTypeStaff},
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		memberID string
		status   int
		code     string
	}{
		{name: "missing header", status: http.StatusUnauthorized, code: codeUnauthorized},
		{name: "unknown member", memberID: "ghost", status: http.StatusUnauthorized, code: codeUnauthorized},
		{name: "suspended member", memberID: "sue", status: http.StatusForbidden, code: codeMembershipInactive},
		{name: "lookup failure", memberID: "broken", status: http.StatusInternalServerError, code: codeInternalError},
		{name: "active member", memberID: "ann", status: http.StatusTeapot},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var seen domain.Member
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = memberFromContext(r.Context())
				w.WriteHeader(http.StatusTeapot)
			})

			req := httptest.NewRequest(http.MethodGet, "/borrowings/me", nil)
			if tt.memberID != "" {
				req.Header.Set(MemberIDHeader, tt.memberID)
			}
			rec := httptest.NewRecorder()
			Authenticate(testMembers, next).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, rec).Code)
				return
			}
			assert.Equal(t, tt.memberID, seen.ID)
		})
	}
}

func TestRequireStaff(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name   string
		ctx    context.Context
		status int
	}{
		{name: "anonymous", ctx: context.Background(), status: http.StatusUnauthorized},
		{name: "member", ctx: WithMember(context.Background(), testMembers["ann"]), status: http.StatusForbidden},
		{name: "staff", ctx: WithMember(context.Background(), testMembers["staff"]), status: http.StatusTeapot},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/reservations", nil).WithContext(tt.ctx)
			rec := httptest.NewRecorder()
			RequireStaff(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}
