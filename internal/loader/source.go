package loader

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SourceKind distinguishes where a document is read from.
type SourceKind int

const (
	SourceKindFile SourceKind = iota + 1
	SourceKindURL
)

func (k SourceKind) String() string {
	switch k {
	case SourceKindFile:
		return "file"
	case SourceKindURL:
		return "url"
	default:
		return "unknown"
	}
}

// Source locates a configuration document.
type Source struct {
	kind     SourceKind
	location string
}

// FileSource returns a Source reading from the local filesystem.
func FileSource(path string) Source {
	return Source{kind: SourceKindFile, location: path}
}

// ParseSource interprets raw as an http(s) URL, a file:// URL or a plain path.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, errors.New("config source is required")
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Source{}, fmt.Errorf("parse config URL: %w", err)
		}
		if u.Host == "" {
			return Source{}, fmt.Errorf("config URL %q has no host", raw)
		}
		return Source{kind: SourceKindURL, location: u.String()}, nil
	case strings.HasPrefix(lower, "file://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Source{}, fmt.Errorf("parse config URL: %w", err)
		}
		if u.Path == "" {
			return Source{}, fmt.Errorf("config URL %q has no path", raw)
		}
		return FileSource(u.Path), nil
	default:
		return FileSource(raw), nil
	}
}

func (s Source) Kind() SourceKind { return s.kind }

func (s Source) Location() string { return s.location }

func (s Source) String() string { return s.location }
