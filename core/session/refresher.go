package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core"
)

// Status is the terminal state of one session-refresh pass.
type Status int

const (
	// StatusAnonymous: no usable session; the request proceeds unauthenticated.
	StatusAnonymous Status = iota
	// StatusValid: access token still good; no cookie mutation.
	StatusValid
	// StatusRotated: expired access exchanged for a new pair; cookies must
	// be rewritten.
	StatusRotated
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusRotated:
		return "rotated"
	default:
		return "anonymous"
	}
}

// Outcome carries the refresh decision back to the transport layer.
type Outcome struct {
	Status Status
	Claims *Claims   // nil when anonymous
	Pair   TokenPair // rotated pair, set only when Status == StatusRotated
	// ClearCookies is set when the presented credentials are definitively
	// dead (tampered or refresh-expired). It stays false on transient
	// backend failures so one outage does not wipe a recoverable session.
	ClearCookies bool
}

// Refresher validates a request's token pair and silently renews it when the
// access token expired but the refresh token is still good. It never blocks
// a request: every failure degrades to anonymous, and enforcement is left to
// the route authorizer downstream.
type Refresher struct {
	backend Backend
	logger  core.Logger
}

func NewRefresher(backend Backend, logger core.Logger) *Refresher {
	return &Refresher{backend: backend, logger: logger}
}

func (r *Refresher) Refresh(ctx context.Context, pair TokenPair) Outcome {
	if pair.Empty() {
		return Outcome{Status: StatusAnonymous}
	}

	claims, err := r.backend.VerifyAccess(ctx, pair.Access)
	switch errors.Cause(err) {
	case nil:
		return Outcome{Status: StatusValid, Claims: &claims}
	case ErrTokenExpired:
		return r.rotate(ctx, pair.Refresh)
	case ErrTokenInvalid:
		if pair.Access == "" && pair.Refresh != "" {
			// access cookie lost but refresh survived; try to recover
			return r.rotate(ctx, pair.Refresh)
		}
		return Outcome{Status: StatusAnonymous, ClearCookies: true}
	default:
		// backend unreachable: treat as anonymous for this request only
		r.logger.Warn("session: access verification unavailable", errors.Wrap(err, "verifying access token"))
		return Outcome{Status: StatusAnonymous}
	}
}

func (r *Refresher) rotate(ctx context.Context, refresh string) Outcome {
	if refresh == "" {
		return Outcome{Status: StatusAnonymous, ClearCookies: true}
	}

	pair, claims, err := r.backend.Refresh(ctx, refresh)
	switch errors.Cause(err) {
	case nil:
		return Outcome{Status: StatusRotated, Claims: &claims, Pair: pair}
	case ErrTokenInvalid, ErrTokenExpired, ErrRefreshExpired:
		return Outcome{Status: StatusAnonymous, ClearCookies: true}
	default:
		r.logger.Warn("session: refresh unavailable", errors.Wrap(err, "refreshing token pair"))
		return Outcome{Status: StatusAnonymous}
	}
}
