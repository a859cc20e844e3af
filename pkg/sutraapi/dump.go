package sutraapi

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/sutraindex"
)

// DumpStore keeps one raw payload per sutra as <dir>/<id>.json.
type DumpStore struct {
	fs      billy.Filesystem
	dir     string
	fetcher Fetcher
	workers int
	log     *logrus.Entry

	// serialises writes; billy filesystems are not all safe for concurrent use
	mu sync.Mutex
}

type DumpOption func(*DumpStore)

// WithWorkers sets how many fetches DumpAll runs at once. The source rate limit still applies.
func WithWorkers(n int) DumpOption {
	return func(s *DumpStore) {
		if n > 0 {
			s.workers = n
		}
	}
}

type DumpResult struct {
	Saved  int
	Failed []string
}

func NewDumpStore(fs billy.Filesystem, dir string, fetcher Fetcher, opts ...DumpOption) *DumpStore {
	s := &DumpStore{
		fs:      fs,
		dir:     dir,
		fetcher: fetcher,
		workers: 1,
		log:     logger.GetLogger("dump"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DumpStore) Path(id string) string {
	return s.fs.Join(s.dir, id+".json")
}

// Save fetches id and overwrites its dump with the payload as received.
func (s *DumpStore) Save(ctx context.Context, id string) error {
	if _, _, _, err := sutraindex.Split(id); err != nil {
		return err
	}
	if s.fetcher == nil {
		return errors.Errorf("no fetcher configured for %s", id)
	}

	payload, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", s.dir)
	}
	if err := util.WriteFile(s.fs, s.Path(id), payload, 0o644); err != nil {
		return errors.Wrapf(err, "write dump %s", s.Path(id))
	}

	s.log.Debugf("Saved %s (%d bytes)", s.Path(id), len(payload))
	return nil
}

// Load parses the dump of id. A missing or corrupt dump is fetched again once.
func (s *DumpStore) Load(ctx context.Context, id string) (*Record, error) {
	rec, err := s.read(id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, ErrCorruptDump) {
		return nil, err
	}

	s.log.WithError(err).Warnf("Refetching %s", id)
	if err := s.Save(ctx, id); err != nil {
		return nil, err
	}
	return s.read(id)
}

// DumpAll saves every id, continuing past individual failures. Only cancellation stops it early.
// Failed keeps the order of ids.
func (s *DumpStore) DumpAll(ctx context.Context, ids []string) (DumpResult, error) {
	var (
		wg       sync.WaitGroup
		done     atomic.Int64
		failed   = make([]bool, len(ids))
		throttle = make(chan struct{}, s.workers)
	)

	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		throttle <- struct{}{}
		go func(i int, id string) {
			defer wg.Done()
			defer func() { <-throttle }()

			if err := s.Save(ctx, id); err != nil {
				if ctx.Err() == nil {
					s.log.WithError(err).Errorf("Failed dumping %s", id)
				}
				failed[i] = true
			}
			if n := done.Add(1); n%500 == 0 {
				s.log.Infof("Dumped %d/%d", n, len(ids))
			}
		}(i, id)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return DumpResult{}, err
	}

	var res DumpResult
	for i, id := range ids {
		if failed[i] {
			res.Failed = append(res.Failed, id)
		} else {
			res.Saved++
		}
	}
	return res, nil
}

func (s *DumpStore) read(id string) (*Record, error) {
	data, err := util.ReadFile(s.fs, s.Path(id))
	if err != nil {
		return nil, errors.Wrapf(err, "read dump %s", s.Path(id))
	}
	return Parse(id, data)
}
