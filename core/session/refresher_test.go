package session

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core/identity"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// fakeBackend scripts the auth collaborator's answers per token value.
type fakeBackend struct {
	verifyErr    error
	refreshErr   error
	refreshCalls int
	rotated      TokenPair
	claims       Claims
}

func (b *fakeBackend) VerifyAccess(_ context.Context, access string) (Claims, error) {
	if b.verifyErr != nil {
		return Claims{}, b.verifyErr
	}
	return b.claims, nil
}

func (b *fakeBackend) Refresh(_ context.Context, refresh string) (TokenPair, Claims, error) {
	b.refreshCalls++
	if b.refreshErr != nil {
		return TokenPair{}, Claims{}, b.refreshErr
	}
	return b.rotated, b.claims, nil
}

func (b *fakeBackend) SignIn(context.Context, string, string) (TokenPair, Claims, error) {
	return TokenPair{}, Claims{}, ErrBadCredentials
}

func (b *fakeBackend) SignOut(context.Context, string) error { return nil }

func TestRefresher(t *testing.T) {
	claims := Claims{UserID: "u1", Role: identity.RoleGuardian, ExpiresAt: time.Now().Add(time.Hour)}
	rotated := TokenPair{Access: "new-access", Refresh: "new-refresh"}
	upstream := errors.New("connection refused")

	tests := []struct {
		name         string
		backend      *fakeBackend
		pair         TokenPair
		wantStatus   Status
		wantClear    bool
		wantRefreshs int
	}{
		{
			name:    "no cookies is anonymous without backend calls",
			backend: &fakeBackend{}, pair: TokenPair{},
			wantStatus: StatusAnonymous,
		},
		{
			name:    "valid access passes through untouched",
			backend: &fakeBackend{claims: claims}, pair: TokenPair{Access: "good", Refresh: "r"},
			wantStatus: StatusValid,
		},
		{
			name:    "expired access rotates exactly once",
			backend: &fakeBackend{verifyErr: ErrTokenExpired, rotated: rotated, claims: claims},
			pair:    TokenPair{Access: "stale", Refresh: "r"},
			wantStatus: StatusRotated, wantRefreshs: 1,
		},
		{
			name:    "expired access without refresh clears",
			backend: &fakeBackend{verifyErr: ErrTokenExpired},
			pair:    TokenPair{Access: "stale"},
			wantStatus: StatusAnonymous, wantClear: true,
		},
		{
			name:    "tampered access clears",
			backend: &fakeBackend{verifyErr: ErrTokenInvalid},
			pair:    TokenPair{Access: "garbage", Refresh: "r"},
			wantStatus: StatusAnonymous, wantClear: true,
		},
		{
			name:    "lost access but live refresh recovers",
			backend: &fakeBackend{verifyErr: ErrTokenInvalid, rotated: rotated, claims: claims},
			pair:    TokenPair{Refresh: "r"},
			wantStatus: StatusRotated, wantRefreshs: 1,
		},
		{
			name:    "expired refresh clears",
			backend: &fakeBackend{verifyErr: ErrTokenExpired, refreshErr: ErrRefreshExpired},
			pair:    TokenPair{Access: "stale", Refresh: "dead"},
			wantStatus: StatusAnonymous, wantClear: true, wantRefreshs: 1,
		},
		{
			name:    "backend down on verify degrades without clearing",
			backend: &fakeBackend{verifyErr: upstream},
			pair:    TokenPair{Access: "good", Refresh: "r"},
			wantStatus: StatusAnonymous,
		},
		{
			name:    "backend down on refresh degrades without clearing",
			backend: &fakeBackend{verifyErr: ErrTokenExpired, refreshErr: upstream},
			pair:    TokenPair{Access: "stale", Refresh: "r"},
			wantStatus: StatusAnonymous, wantRefreshs: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRefresher(tt.backend, nopLogger{})
			out := r.Refresh(context.Background(), tt.pair)
			if out.Status != tt.wantStatus {
				t.Errorf("Refresh() status = %v, want %v", out.Status, tt.wantStatus)
			}
			if out.ClearCookies != tt.wantClear {
				t.Errorf("Refresh() clearCookies = %v, want %v", out.ClearCookies, tt.wantClear)
			}
			if tt.backend.refreshCalls != tt.wantRefreshs {
				t.Errorf("Refresh() backend refresh calls = %v, want %v", tt.backend.refreshCalls, tt.wantRefreshs)
			}
			if tt.wantStatus == StatusRotated {
				if out.Pair != rotated {
					t.Errorf("Refresh() pair = %+v, want %+v", out.Pair, rotated)
				}
				if out.Claims == nil || out.Claims.UserID != claims.UserID {
					t.Errorf("Refresh() claims = %+v, want user %q", out.Claims, claims.UserID)
				}
			}
			if tt.wantStatus == StatusAnonymous && out.Claims != nil {
				t.Errorf("Refresh() anonymous outcome carries claims %+v", out.Claims)
			}
		})
	}
}
