package urlutil

import (
	"errors"
	"net/url"
	"strings"
)

// Normalize drops the fragment, defaults the scheme to https and lowercases
// the host. Query and path are kept as given since the script pages key
// off them.
func Normalize(raw string) (string, error) {
	u, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func Parse(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		// "example.com/x" parses as a bare path
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return nil, err
		}
	}
	if u.Host == "" {
		return nil, errors.New("url has no host")
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	return u, nil
}

// Origin is scheme://host of u.
func Origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
