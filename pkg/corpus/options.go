package corpus

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sirupsen/logrus"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/naming"
)

// Metadata is attached by callers and never inspected by the tree.
type Metadata map[string]any

type Option func(*settings)

// settings are inherited by every child a node constructs.
type settings struct {
	fs          billy.Filesystem
	strategy    naming.Strategy
	memberCache bool
	metadata    Metadata
	log         *logrus.Entry
}

func newSettings(opts []Option) settings {
	s := settings{
		fs:          osfs.New("/"), // host filesystem, paths resolve from "/"
		strategy:    naming.Default(),
		memberCache: true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.GetLogger("corpus")
	}
	return s
}

// child returns the settings handed to a constructed child, which carries no metadata of its own.
func (s settings) child() settings {
	s.metadata = nil
	return s
}

// WithStrategy overrides the default pada-A.P layout.
func WithStrategy(strategy naming.Strategy) Option {
	return func(s *settings) {
		if strategy != nil {
			s.strategy = strategy
		}
	}
}

// WithMemberCache controls whether repeated lookups return the same child instance. Enabled by default.
func WithMemberCache(enabled bool) Option {
	return func(s *settings) {
		s.memberCache = enabled
	}
}

func WithMetadata(md Metadata) Option {
	return func(s *settings) {
		s.metadata = md
	}
}

// WithFS binds the tree to fs instead of the host filesystem.
func WithFS(fs billy.Filesystem) Option {
	return func(s *settings) {
		if fs != nil {
			s.fs = fs
		}
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(s *settings) {
		s.log = log
	}
}
