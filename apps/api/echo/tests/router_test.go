package tests

import (
	"net/http"
	"testing"

	"github.com/terakoya-app/terakoya/core/locale"
	"github.com/terakoya-app/terakoya/core/session"
)

func Test_localeCanonicalization(t *testing.T) {
	env := setup(t)

	tests := []httpTest{
		{name: "bare default serves", path: "/", wantCode: http.StatusOK},
		{name: "default prefix redirects to bare", path: "/ja/login", wantCode: http.StatusTemporaryRedirect, wantLoc: "/login"},
		{name: "default prefix root redirects", path: "/ja", wantCode: http.StatusTemporaryRedirect, wantLoc: "/"},
		{name: "crafted path cannot leave the site", path: "/ja//evil.com", wantCode: http.StatusTemporaryRedirect, wantLoc: "/evil.com"},
		{name: "prefixed non-default serves", path: "/fr/login", wantCode: http.StatusOK},
		{name: "prefix wins over cookie", path: "/fr/login", locale: "ja", wantCode: http.StatusOK},
		{name: "cookie prefixes bare path", path: "/login", locale: "fr", wantCode: http.StatusTemporaryRedirect, wantLoc: "/fr/login"},
		{name: "cookie prefixes root", path: "/", locale: "ko", wantCode: http.StatusTemporaryRedirect, wantLoc: "/ko"},
		{name: "default cookie beats header", path: "/login", locale: "ja", acceptLang: "fr-FR,fr;q=0.9", wantCode: http.StatusOK},
		{name: "header prefixes bare path", path: "/login", acceptLang: "fr-FR,fr;q=0.9", wantCode: http.StatusTemporaryRedirect, wantLoc: "/fr/login"},
		{name: "unsupported header falls back", path: "/login", acceptLang: "th-TH", wantCode: http.StatusOK},
		{name: "garbage header falls back", path: "/login", acceptLang: ";;;", wantCode: http.StatusOK},
		{name: "unknown cookie falls back", path: "/login", locale: "xx", wantCode: http.StatusOK},
		{name: "api namespace never redirects", path: "/api/auth/me", locale: "fr", wantCode: http.StatusUnauthorized},
		{name: "admin namespace is single-locale", path: "/admin", locale: "fr", wantCode: http.StatusFound, wantLoc: "/login"},
		{name: "healthz bypasses resolution", path: "/healthz", locale: "fr", wantCode: http.StatusOK},
		{name: "static asset bypasses resolution", path: "/favicon.ico", locale: "fr", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}
}

// Following a locale redirect with unchanged preferences must land on a
// canonical URL; a second resolution never redirects again.
func Test_localeRedirectIdempotence(t *testing.T) {
	env := setup(t)

	for _, loc := range locale.Supported {
		loc := loc
		t.Run(string(loc), func(t *testing.T) {
			first := env.do(httpTest{path: "/login", locale: string(loc)})
			if loc == locale.Default {
				if first.Code != http.StatusOK {
					t.Fatalf("default locale: code = %v; want %v", first.Code, http.StatusOK)
				}
				return
			}
			if first.Code != http.StatusTemporaryRedirect {
				t.Fatalf("code = %v; want %v", first.Code, http.StatusTemporaryRedirect)
			}

			second := env.do(httpTest{path: first.Header().Get("Location"), locale: string(loc)})
			if second.Code != http.StatusOK {
				t.Errorf("redirect target not canonical: code = %v; want %v", second.Code, http.StatusOK)
			}
		})
	}
}

func Test_sessionRenewal(t *testing.T) {
	env := setup(t)

	t.Run("anonymous request leaves cookies alone", func(t *testing.T) {
		rec := env.do(httpTest{path: "/login"})
		if cookies := env.sessionCookies(rec); len(cookies) != 0 {
			t.Errorf("unexpected session cookies: %v", cookies)
		}
	})

	t.Run("valid pair is not rewritten", func(t *testing.T) {
		pair := env.signIn(t, guardianEmail, guardianPwd)
		rec := env.do(httpTest{path: "/guardian/dashboard", pair: pair})
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		if cookies := env.sessionCookies(rec); len(cookies) != 0 {
			t.Errorf("valid session was rewritten: %v", cookies)
		}
	})

	t.Run("expired access is silently rotated", func(t *testing.T) {
		pair := env.expiredPair(t, guardianEmail, guardianPwd)
		rec := env.do(httpTest{path: "/guardian/dashboard", pair: pair})
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}

		cookies := env.sessionCookies(rec)
		if len(cookies) != 2 {
			t.Fatalf("got %d session cookies; want a full rotated pair", len(cookies))
		}
		access := cookies[env.conf.Server.AccessCookieName]
		refresh := cookies[env.conf.Server.RefreshCookieName]
		if access.Value == "" || access.Value == pair.Access {
			t.Error("access token was not rotated")
		}
		if refresh.Value == "" || refresh.Value == pair.Refresh {
			t.Error("refresh token was not rotated")
		}
		if access.MaxAge <= 0 || refresh.MaxAge <= 0 {
			t.Error("rotated cookies must outlive the access token")
		}
		for _, cookie := range cookies {
			if !cookie.HttpOnly {
				t.Errorf("%s must be HttpOnly", cookie.Name)
			}
			if cookie.SameSite != http.SameSiteLaxMode {
				t.Errorf("%s SameSite = %v; want Lax", cookie.Name, cookie.SameSite)
			}
		}
	})

	t.Run("tampered tokens are cleared", func(t *testing.T) {
		rec := env.do(httpTest{path: "/guardian/dashboard", pair: session.TokenPair{Access: "not-a-jwt", Refresh: "also-not"}})
		if rec.Code != http.StatusFound {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusFound)
		}

		cookies := env.sessionCookies(rec)
		if len(cookies) != 2 {
			t.Fatalf("got %d session cookies; want both cleared", len(cookies))
		}
		for name, cookie := range cookies {
			if cookie.Value != "" || cookie.MaxAge >= 0 {
				t.Errorf("%s not cleared: value=%q maxAge=%d", name, cookie.Value, cookie.MaxAge)
			}
		}
	})

	t.Run("machine namespace still refreshes", func(t *testing.T) {
		pair := env.expiredPair(t, guardianEmail, guardianPwd)
		rec := env.do(httpTest{method: http.MethodGet, path: "/api/auth/me", pair: pair})
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		if cookies := env.sessionCookies(rec); len(cookies) != 2 {
			t.Errorf("got %d session cookies; want a rotated pair", len(cookies))
		}
	})
}
