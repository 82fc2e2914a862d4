package locale

// Result is the outcome of resolving a request's locale.
// Exactly one of the two shapes applies: a pass-through (Locale + rewritten
// Path) or a redirect to the canonically-prefixed equivalent path.
type Result struct {
	Locale       Locale
	Path         string // request path with the locale prefix stripped
	RedirectPath string // non-empty when the request must be redirected
}

func (r Result) IsRedirect() bool { return r.RedirectPath != "" }

// Resolve negotiates the locale for a request. Precedence: explicit path
// prefix > locale cookie > Accept-Language header > default.
//
// Prefixing is "as-needed": the default locale is never carried in the URL,
// every other locale always is. Resolving an already-canonical path never
// produces a redirect.
func Resolve(path, cookieLocale, acceptLanguage string) Result {
	if loc, rest, ok := FromPath(path); ok {
		if loc == Default {
			// canonical default is un-prefixed
			return Result{Locale: loc, RedirectPath: sameSite(rest)}
		}
		return Result{Locale: loc, Path: rest}
	}

	loc, ok := Parse(cookieLocale)
	if !ok {
		loc = Negotiate(acceptLanguage)
	}
	if loc == Default {
		return Result{Locale: loc, Path: path}
	}
	return Result{Locale: loc, RedirectPath: sameSite(prefixed(loc, path))}
}

// PathFor returns the canonical path for `path` under `loc`, with as-needed
// prefixing applied. `path` must be un-prefixed.
func PathFor(loc Locale, path string) string {
	if loc == Default {
		return path
	}
	return prefixed(loc, path)
}

func prefixed(loc Locale, path string) string {
	if path == "/" {
		return "/" + string(loc)
	}
	return "/" + string(loc) + path
}

// sameSite keeps a redirect target on this origin. Browsers treat a
// Location of "//host" or "/\host" as protocol-relative, so a crafted
// request path like "/ja//evil.com" must not become a cross-origin
// redirect.
func sameSite(path string) string {
	for len(path) > 1 && path[0] == '/' && (path[1] == '/' || path[1] == '\\') {
		path = path[1:]
	}
	if path == "" || path[0] != '/' {
		return "/"
	}
	return path
}
