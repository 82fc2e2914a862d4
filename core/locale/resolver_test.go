package locale

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		cookie       string
		header       string
		wantLocale   Locale
		wantPath     string
		wantRedirect string
	}{
		{name: "no signals defaults", path: "/login", wantLocale: "ja", wantPath: "/login"},
		{name: "prefixed path wins", path: "/fr/login", cookie: "en", header: "sv", wantLocale: "fr", wantPath: "/login"},
		{name: "prefixed root", path: "/fr", wantLocale: "fr", wantPath: "/"},
		{name: "default prefix strips", path: "/ja/login", wantLocale: "ja", wantRedirect: "/login"},
		{name: "default prefix root strips", path: "/ja", wantLocale: "ja", wantRedirect: "/"},
		{name: "cookie beats header", path: "/login", cookie: "sv", header: "fr", wantLocale: "sv", wantRedirect: "/sv/login"},
		{name: "bad cookie falls back to header", path: "/login", cookie: "xx", header: "fr", wantLocale: "fr", wantRedirect: "/fr/login"},
		{name: "header negotiation", path: "/login", header: "fr-CA,fr;q=0.9,en;q=0.5", wantLocale: "fr", wantRedirect: "/fr/login"},
		{name: "unsupported header defaults", path: "/login", header: "pt-BR", wantLocale: "ja", wantPath: "/login"},
		{name: "garbage header defaults", path: "/login", header: ";;;===", wantLocale: "ja", wantPath: "/login"},
		{name: "default cookie no redirect", path: "/login", cookie: "ja", header: "fr", wantLocale: "ja", wantPath: "/login"},
		{name: "root redirect has no trailing slash", path: "/", header: "sv", wantLocale: "sv", wantRedirect: "/sv"},
		{name: "lookalike segment is not a prefix", path: "/free/login", header: "en", wantLocale: "en", wantRedirect: "/en/free/login"},
		{name: "double slash stays same-site", path: "/ja//evil.com", wantLocale: "ja", wantRedirect: "/evil.com"},
		{name: "many slashes stay same-site", path: "/ja////evil.com", wantLocale: "ja", wantRedirect: "/evil.com"},
		{name: "backslash stays same-site", path: `/ja/\evil.com`, wantLocale: "ja", wantRedirect: "/"},
		{name: "prefixing a dirty path stays same-site", path: "//evil.com", cookie: "sv", wantLocale: "sv", wantRedirect: "/sv//evil.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.path, tt.cookie, tt.header)
			if res.Locale != tt.wantLocale {
				t.Errorf("Resolve() locale = %v, want %v", res.Locale, tt.wantLocale)
			}
			if res.Path != tt.wantPath {
				t.Errorf("Resolve() path = %v, want %v", res.Path, tt.wantPath)
			}
			if res.RedirectPath != tt.wantRedirect {
				t.Errorf("Resolve() redirect = %v, want %v", res.RedirectPath, tt.wantRedirect)
			}
		})
	}
}

func TestResolveIdempotence(t *testing.T) {
	// resolving an already-canonical path never redirects, for every locale
	for _, loc := range Supported {
		res := Resolve(PathFor(loc, "/dashboard"), "", "")
		if res.IsRedirect() {
			t.Errorf("Resolve(%q) redirected to %q; canonical paths must pass through", PathFor(loc, "/dashboard"), res.RedirectPath)
		}
		if res.Locale != loc && loc != Default {
			t.Errorf("Resolve(%q) locale = %v, want %v", PathFor(loc, "/dashboard"), res.Locale, loc)
		}
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   Locale
	}{
		{"", "ja"},
		{"fr", "fr"},
		{"fr-CA", "fr"},
		{"zh-CN,zh;q=0.9", "zh"},
		{"ko-KR", "ko"},
		{"da, en-gb;q=0.8, en;q=0.7", "en"},
		{"pt", "ja"},
		{"*;q=xx", "ja"},
	}
	for _, tt := range tests {
		if got := Negotiate(tt.header); got != tt.want {
			t.Errorf("Negotiate(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
