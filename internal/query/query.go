// Package query reads named parameters out of a page URL.
package query

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/naka-gawa/repo-health/internal/domain"
)

// ParameterByName extracts the named parameter from the query string or
// fragment of rawURL.
//
// It returns ("", false) when the parameter does not appear at all and
// ("", true) when it appears without a value. Otherwise the value is returned
// with '+' read as a space and percent escapes decoded.
func ParameterByName(rawURL, name string) (string, bool) {
	re := regexp.MustCompile(`[?&]` + regexp.QuoteMeta(name) + `(=([^&#]*)|&|#|$)`)
	m := re.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	if m[2] == "" {
		return "", true
	}
	raw := strings.ReplaceAll(m[2], "+", " ")
	decoded, err := url.PathUnescape(raw)
	if err != nil || !utf8.ValidString(decoded) {
		// Malformed escapes are returned verbatim.
		return raw, true
	}
	return decoded, true
}

// TargetFromURL reads the owner and repo parameters once from rawURL.
func TargetFromURL(rawURL string) domain.Target {
	owner, _ := ParameterByName(rawURL, "owner")
	repo, _ := ParameterByName(rawURL, "repo")
	return domain.Target{Owner: owner, Repo: repo}
}
