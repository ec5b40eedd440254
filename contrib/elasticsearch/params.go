package elasticsearch

import (
	"net/url"
	"strings"
)

// legacyParams returns the path and the query parameters of a pre-8 request.
func legacyParams(u *url.URL) (string, url.Values) {
	return u.EscapedPath(), u.Query()
}

// parseURLParams splits a request URI into its path and parameters the way
// the 8.x+ transport builds them: "&" separated pairs, a bare name maps to the
// empty string, values are unescaped and names are kept as sent. Only the
// first "=" of a pair separates name from value.
func parseURLParams(raw string) (string, url.Values) {
	params := url.Values{}
	u, err := url.Parse(raw)
	if err != nil {
		path, _, _ := strings.Cut(raw, "?")
		return path, params
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		name, value, found := strings.Cut(pair, "=")
		if name == "" {
			continue
		}
		if !found {
			params.Set(name, "")
			continue
		}
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		params.Set(name, value)
	}
	return u.EscapedPath(), params
}

// encodeParams renders params as a sorted form-encoded query.
func encodeParams(params url.Values) string {
	return params.Encode()
}
