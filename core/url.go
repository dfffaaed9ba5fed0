package sga

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseResult holds the components of an archive URL.
//
// The URL grammar is proto://[user[:pass]@]resource[!path][?key=value&...].
// Resource is the filesystem path of the archive, Path optionally names a
// location inside it.
type ParseResult struct {
	Protocol string
	Username string
	Password string
	Resource string
	Params   map[string]string
	Path     string
}

// ParseURL splits an archive URL into its components.
//
// A URL without "://" fails with ErrConfiguration. Percent-escapes in the
// resource, credentials, and parameters are decoded.
func ParseURL(fsURL string) (ParseResult, error) {
	proto, rest, ok := strings.Cut(fsURL, "://")
	if !ok || proto == "" {
		return ParseResult{}, fmt.Errorf("%w: %q is not an archive url", ErrConfiguration, fsURL)
	}

	res := ParseResult{Protocol: strings.ToLower(proto)}

	if resource, query, ok := strings.Cut(rest, "?"); ok {
		rest = resource
		params, err := url.ParseQuery(query)
		if err != nil {
			return ParseResult{}, fmt.Errorf("%w: bad parameters in %q: %w", ErrConfiguration, fsURL, err)
		}
		res.Params = make(map[string]string, len(params))
		for k, vs := range params {
			res.Params[k] = vs[len(vs)-1]
		}
	}

	if i := strings.LastIndex(rest, "!"); i >= 0 {
		res.Path = rest[i+1:]
		rest = rest[:i]
	}

	if creds, resource, ok := strings.Cut(rest, "@"); ok && !strings.ContainsAny(creds, "/\\") {
		user, pass, _ := strings.Cut(creds, ":")
		res.Username = unescape(user)
		res.Password = unescape(pass)
		rest = resource
	}

	res.Resource = unescape(rest)
	return res, nil
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
