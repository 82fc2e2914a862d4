package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core/identity"
)

var (
	ErrTokenInvalid     = errors.New("token is invalid")
	ErrTokenExpired     = errors.New("token has expired")
	ErrRefreshExpired   = errors.New("refresh has expired")
	ErrBadCredentials   = errors.New("invalid credentials")
	ErrAccountSuspended = errors.New("account suspended")
)

type (
	// TokenPair is the access/refresh credential pair carried in the
	// session cookies. Both rotate together; a pair is never half-written.
	TokenPair struct {
		Access  string
		Refresh string
	}

	// Claims is what the auth backend asserts about a verified session.
	Claims struct {
		UserID    string
		Email     string
		Role      identity.Role
		ExpiresAt time.Time
	}

	// Backend is the hosted auth collaborator. Token-exchange consistency
	// (single-use or rotate-safe refresh tokens) is its responsibility,
	// not this layer's.
	Backend interface {
		// VerifyAccess validates an access token. Returns ErrTokenExpired
		// for a well-formed but expired token, ErrTokenInvalid otherwise.
		VerifyAccess(ctx context.Context, access string) (Claims, error)
		// Refresh exchanges a still-valid refresh token for a rotated pair.
		Refresh(ctx context.Context, refresh string) (TokenPair, Claims, error)
		// SignIn exchanges credentials for an initial pair.
		SignIn(ctx context.Context, email, password string) (TokenPair, Claims, error)
		// SignOut revokes a refresh token.
		SignOut(ctx context.Context, refresh string) error
	}
)

func (p TokenPair) Empty() bool { return p.Access == "" && p.Refresh == "" }
