package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported UI language tag.
type Locale string

// Default is never prefixed in URLs ("as-needed" prefixing).
const Default = Locale("ja")

// Supported is the fixed set of locales the app ships translations for.
// Order matters: it is the preference order used to break header ties.
var Supported = []Locale{"ja", "en", "fr", "es", "it", "sv", "ru", "zh", "ko"}

var matcher language.Matcher

func init() {
	tags := make([]language.Tag, 0, len(Supported))
	for _, loc := range Supported {
		tags = append(tags, language.MustParse(string(loc)))
	}
	matcher = language.NewMatcher(tags)
}

func (l Locale) String() string { return string(l) }

// Parse returns the supported locale matching `s`, if any.
func Parse(s string) (Locale, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, loc := range Supported {
		if string(loc) == s {
			return loc, true
		}
	}
	return "", false
}

// FromPath splits a leading locale segment off `path`.
// "/fr/login" yields (fr, "/login", true); "/login" yields ("", "", false).
func FromPath(path string) (Locale, string, bool) {
	if len(path) < 2 || path[0] != '/' {
		return "", "", false
	}
	seg := path[1:]
	rest := "/"
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		rest = seg[i:]
		seg = seg[:i]
	}
	loc, ok := Parse(seg)
	if !ok {
		return "", "", false
	}
	return loc, rest, true
}

// Negotiate resolves a supported locale from an Accept-Language header value.
// Unparseable or unsupported headers fall back to the default locale.
func Negotiate(acceptLanguage string) Locale {
	if acceptLanguage == "" {
		return Default
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}
