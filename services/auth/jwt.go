package authsvc

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/terakoya-app/terakoya/core"
	"github.com/terakoya-app/terakoya/core/identity"
	"github.com/terakoya-app/terakoya/core/session"
)

var ErrAccountNotFound = errors.New("account not found")

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

type (
	// Account is the credential-bearing view of a user, as stored by the
	// auth backend. Distinct from identity.Identity: it exists before a
	// session does.
	Account struct {
		ID           string
		Email        string
		PasswordHash []byte
		Role         identity.Role
		Suspended    bool
	}

	// AccountStore looks accounts up for sign-in and refresh.
	AccountStore interface {
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		GetAccountByID(ctx context.Context, id string) (Account, error)
	}

	// Claims is the token payload transmitted via a signed JWT.
	Claims struct {
		jwt.StandardClaims
		OrigIssuedAt int64  `json:"oriat,omitempty"`
		Email        string `json:"email,omitempty"`
		Role         string `json:"role,omitempty"`
		TokenUse     string `json:"use,omitempty"`
	}
)

// JWTBackend implements session.Backend over HS256-signed token pairs.
// The refresh window is absolute: every rotated refresh token keeps the
// original issued-at, so a session cannot be extended forever by rotating.
type JWTBackend struct {
	store        AccountStore
	secret       []byte
	issuer       string
	accessDelta  time.Duration
	refreshDelta time.Duration

	nowFunc func() time.Time // tests
}

var _ session.Backend = (*JWTBackend)(nil)

func NewJWTBackend(store AccountStore, conf *core.Config) *JWTBackend {
	return &JWTBackend{
		store:        store,
		secret:       []byte(conf.SecretKey),
		issuer:       conf.AppName,
		accessDelta:  conf.Server.JWTExpirationDelta,
		refreshDelta: conf.Server.JWTRefreshExpirationDelta,
		nowFunc:      time.Now,
	}
}

func (b *JWTBackend) VerifyAccess(_ context.Context, access string) (session.Claims, error) {
	claims, err := b.parse(access, useAccess)
	if err != nil {
		return session.Claims{}, err
	}
	return b.sessionClaims(claims), nil
}

func (b *JWTBackend) Refresh(ctx context.Context, refresh string) (session.TokenPair, session.Claims, error) {
	claims, err := b.parse(refresh, useRefresh)
	if err != nil {
		if errors.Cause(err) == session.ErrTokenExpired {
			err = session.ErrRefreshExpired
		}
		return session.TokenPair{}, session.Claims{}, err
	}

	acct, err := b.store.GetAccountByID(ctx, claims.Subject)
	if err != nil {
		if errors.Cause(err) == ErrAccountNotFound {
			return session.TokenPair{}, session.Claims{}, session.ErrTokenInvalid
		}
		return session.TokenPair{}, session.Claims{}, core.NewUpstreamError("auth-store", err)
	}
	if acct.Suspended {
		return session.TokenPair{}, session.Claims{}, session.ErrTokenInvalid
	}

	return b.issue(acct, claims.OrigIssuedAt)
}

func (b *JWTBackend) SignIn(ctx context.Context, email, password string) (session.TokenPair, session.Claims, error) {
	acct, err := b.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrAccountNotFound {
			return session.TokenPair{}, session.Claims{}, session.ErrBadCredentials
		}
		return session.TokenPair{}, session.Claims{}, core.NewUpstreamError("auth-store", err)
	}
	if err = bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return session.TokenPair{}, session.Claims{}, session.ErrBadCredentials
	}
	if acct.Suspended {
		return session.TokenPair{}, session.Claims{}, session.ErrAccountSuspended
	}
	return b.issue(acct, b.nowFunc().Unix())
}

// SignOut is a no-op: token pairs are stateless and die by expiry; the
// transport layer clears the cookies.
func (b *JWTBackend) SignOut(context.Context, string) error { return nil }

// issue signs a fresh token pair. oriat pins the absolute refresh window.
func (b *JWTBackend) issue(acct Account, oriat int64) (session.TokenPair, session.Claims, error) {
	now := b.nowFunc()
	accessExp := now.Add(b.accessDelta)
	refreshExp := time.Unix(oriat, 0).Add(b.refreshDelta)

	access, err := b.sign(acct, oriat, useAccess, now, accessExp)
	if err != nil {
		return session.TokenPair{}, session.Claims{}, errors.Wrap(err, "signing access token")
	}
	refresh, err := b.sign(acct, oriat, useRefresh, now, refreshExp)
	if err != nil {
		return session.TokenPair{}, session.Claims{}, errors.Wrap(err, "signing refresh token")
	}

	claims := session.Claims{
		UserID:    acct.ID,
		Email:     acct.Email,
		Role:      acct.Role,
		ExpiresAt: accessExp,
	}
	return session.TokenPair{Access: access, Refresh: refresh}, claims, nil
}

func (b *JWTBackend) sign(acct Account, oriat int64, use string, now, exp time.Time) (string, error) {
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    b.issuer,
			Subject:   acct.ID,
			ExpiresAt: exp.Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: oriat,
		Email:        acct.Email,
		Role:         string(acct.Role),
		TokenUse:     use,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(b.secret)
}

func (b *JWTBackend) parse(tokenStr, wantUse string) (*Claims, error) {
	if tokenStr == "" {
		return nil, session.ErrTokenInvalid
	}
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return b.secret, nil
	})
	if err != nil {
		if vErr, ok := err.(*jwt.ValidationError); ok && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, session.ErrTokenExpired
		}
		return nil, session.ErrTokenInvalid
	}
	if !token.Valid || claims.TokenUse != wantUse {
		return nil, session.ErrTokenInvalid
	}
	return claims, nil
}

func (b *JWTBackend) sessionClaims(claims *Claims) session.Claims {
	role, _ := identity.ParseRole(claims.Role)
	return session.Claims{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      role,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}
}
