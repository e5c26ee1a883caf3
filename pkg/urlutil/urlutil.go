package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Resolve interprets href relative to base and returns an absolute URL.
// Fragments are dropped; scheme and host are lowercased.
func Resolve(base url.URL, href string) (url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return url.URL{}, fmt.Errorf("invalid href %q: %w", href, err)
	}
	resolved := base.ResolveReference(ref)
	resolved.Scheme = lowerASCII(resolved.Scheme)
	resolved.Host = lowerASCII(resolved.Host)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return *resolved, nil
}

// WithIndexPage appends "index.htm" to a directory-style path
// ("/isro/" becomes "/isro/index.htm"). Paths that already name a file are
// returned unchanged.
func WithIndexPage(u url.URL) url.URL {
	if u.Path == "" {
		u.Path = "/"
	}
	if strings.HasSuffix(u.Path, "/") {
		u.Path += "index.htm"
	}
	return u
}

// lowerASCII converts ASCII characters to lowercase without allocating.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}

	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
