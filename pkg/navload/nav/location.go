package nav

import (
	"fmt"
	"net/url"
)

// Location is the destination of a navigation.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation splits a raw "path?query" string.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("nav: invalid location %q: %w", raw, err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return Location{Path: path, Query: u.Query()}, nil
}

// MustParseLocation is ParseLocation for literals; it panics on error.
func MustParseLocation(raw string) Location {
	loc, err := ParseLocation(raw)
	if err != nil {
		panic(err)
	}
	return loc
}

// FullPath renders path and encoded query.
func (l Location) FullPath() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

func (l Location) String() string {
	return l.FullPath()
}
