// Package tweet parses Twitter/X post references into a normalized form
// usable by the downloader, capturer, and pipeline.
package tweet

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedReference is returned when a URL does not match any
// supported reference kind.
var ErrUnsupportedReference = errors.New("unsupported post reference")

// Kind identifies the shape of a post reference URL
type Kind string

const (
	KindPost      Kind = "post"
	KindTimeline  Kind = "timeline"
	KindMedia     Kind = "media"
	KindLikes     Kind = "likes"
	KindBookmarks Kind = "bookmarks"
	KindList      Kind = "list"
)

// Reference is an immutable, parsed post reference
type Reference struct {
	URL    string
	Kind   Kind
	Author string // handle without @; empty for bookmarks
	PostID string // set only for KindPost
}

// IsPost reports whether the reference points at a single post.
func (r Reference) IsPost() bool {
	return r.Kind == KindPost
}

var statusRe = regexp.MustCompile(`/status/(\d+)`)

// Normalize canonicalizes a Twitter/X URL: https scheme, x.com host,
// no query parameters, no trailing slash.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Replace(s, "http://", "https://", 1)
	for _, host := range []string{"www.twitter.com", "twitter.com", "www.x.com"} {
		s = strings.Replace(s, host, "x.com", 1)
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "/")
}

// ExtractPostID returns the numeric status ID from a URL, or "" if the
// URL does not reference a single post.
func ExtractPostID(raw string) string {
	m := statusRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}

// Parse normalizes a URL and classifies it into a supported reference kind.
func Parse(raw string) (Reference, error) {
	normalized := Normalize(raw)

	u, err := url.Parse(normalized)
	if err != nil {
		return Reference{}, errors.Wrapf(ErrUnsupportedReference, "invalid URL %q", raw)
	}
	if u.Host != "x.com" {
		return Reference{}, errors.Wrapf(ErrUnsupportedReference, "unsupported host %q", u.Host)
	}

	parts := splitPath(u.Path)
	ref := Reference{URL: normalized}

	switch {
	case len(parts) == 2 && parts[0] == "i" && parts[1] == "bookmarks":
		ref.Kind = KindBookmarks

	case len(parts) == 3 && parts[0] == "i" && parts[1] == "lists":
		ref.Kind = KindList

	case len(parts) >= 3 && parts[1] == "status":
		id := ExtractPostID(normalized)
		if id == "" {
			return Reference{}, errors.Wrapf(ErrUnsupportedReference, "malformed status URL %q", raw)
		}
		ref.Kind = KindPost
		ref.Author = parts[0]
		ref.PostID = id

	case len(parts) == 2 && parts[1] == "media":
		ref.Kind = KindMedia
		ref.Author = parts[0]

	case len(parts) == 2 && parts[1] == "likes":
		ref.Kind = KindLikes
		ref.Author = parts[0]

	case len(parts) == 1 && parts[0] != "i":
		ref.Kind = KindTimeline
		ref.Author = parts[0]

	default:
		return Reference{}, errors.Wrapf(ErrUnsupportedReference, "unrecognized URL shape %q", raw)
	}

	return ref, nil
}

// MediaFilenameTemplate is the gallery-dl output template yielding
// deterministic media names: twitter_{author}_{post_id}_{n}.{ext},
// sequence numbers following the platform's media ordering.
const MediaFilenameTemplate = "twitter_{username}_{tweet_id}_{num}.{extension}"

func splitPath(p string) []string {
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}
