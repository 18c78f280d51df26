package loader

import (
	"fmt"
	"strings"
)

// CommitMode decides when a settled fetch becomes visible.
type CommitMode int

const (
	// CommitImmediate publishes as soon as the fetch settles.
	CommitImmediate CommitMode = iota
	// CommitAfterLoad waits for the guard to accept the whole navigation.
	// Outside a navigation it behaves like CommitImmediate.
	CommitAfterLoad
)

func (m CommitMode) String() string {
	switch m {
	case CommitImmediate:
		return "immediate"
	case CommitAfterLoad:
		return "after-load"
	default:
		return fmt.Sprintf("CommitMode(%d)", int(m))
	}
}

// ParseCommitMode accepts "immediate" and "after-load".
func ParseCommitMode(s string) (CommitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "immediate":
		return CommitImmediate, nil
	case "after-load", "after_load", "afterload":
		return CommitAfterLoad, nil
	default:
		return 0, fmt.Errorf("loader: unknown commit mode %q", s)
	}
}

// Options is the resolved loader configuration.
type Options struct {
	// Lazy loaders do not block navigation: after hydration their errors
	// only surface through the entry's error cell.
	Lazy bool
	// Server loaders run during server rendering. The guard skips loaders
	// with Server false on a server-mode router.
	Server bool
	Commit CommitMode
	// Key names the loader in the initial-data and server snapshots.
	Key string
}

var DefaultOptions = Options{
	Lazy:   false,
	Server: true,
	Commit: CommitImmediate,
}

type Option func(*Options)

func WithKey(key string) Option {
	return func(o *Options) {
		o.Key = key
	}
}

func Lazy() Option {
	return func(o *Options) {
		o.Lazy = true
	}
}

// ClientOnly keeps the loader out of server rendering.
func ClientOnly() Option {
	return func(o *Options) {
		o.Server = false
	}
}

func WithCommit(m CommitMode) Option {
	return func(o *Options) {
		o.Commit = m
	}
}

func resolveOptions(opts []Option) Options {
	o := DefaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
