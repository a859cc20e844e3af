package corpus

import (
	"cmp"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
)

// members is the child index of one node: the id -> entry name map taken from a single
// directory listing, plus the children built from it so far.
type members[T any] struct {
	mu    sync.RWMutex
	cache bool

	bound bool
	gen   uint64
	dir   string
	names map[string]string
	built map[string]T
}

func newMembers[T any](cache bool) *members[T] {
	return &members[T]{cache: cache}
}

// reset rebinds to dir, discarding the previous map and every built child.
func (m *members[T]) reset(dir string, names map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bound = true
	m.gen++
	m.dir = dir
	m.names = names
	m.built = make(map[string]T)
}

func (m *members[T]) path() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dir, m.bound
}

func (m *members[T]) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names)
}

// get returns the child for id, building it from (dir, entry name) on a miss.
// ok is false when the node is unbound or id is not in the map.
func (m *members[T]) get(id string, build func(dir, name string) (T, error)) (T, bool, error) {
	var zero T

	// fast path: read lock
	m.mu.RLock()
	if !m.bound {
		m.mu.RUnlock()
		return zero, false, nil
	}
	if m.cache {
		if child, exists := m.built[id]; exists {
			m.mu.RUnlock()
			return child, true, nil
		}
	}
	name, exists := m.names[id]
	dir, gen := m.dir, m.gen
	m.mu.RUnlock()

	if !exists {
		return zero, false, nil
	}

	// build outside the lock; a concurrent duplicate build is harmless
	child, err := build(dir, name)
	if err != nil {
		return zero, false, err
	}
	if !m.cache {
		return child, true, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// double-check after acquiring write lock
	if existing, exists := m.built[id]; exists {
		return existing, true, nil
	}
	// rebound while building; the child belongs to the old map
	if m.gen != gen {
		return child, true, nil
	}
	m.built[id] = child

	return child, true, nil
}

// ids returns the child ids in ascending order, or descending when reverse is set.
func (m *members[T]) ids(reverse bool) []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.names))
	for id := range m.names {
		out = append(out, id)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, compareIDs)
	if reverse {
		slices.Reverse(out)
	}
	return out
}

// compareIDs orders numeric ids by value ("2" < "10"); non-numeric ids sort after them, lexically.
func compareIDs(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)

	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// scan lists dir once and keys each accepted entry by the id classify extracts from its name.
// wantDir selects directories or regular files. The first entry by name wins a duplicate id.
func scan(fs billy.Filesystem, dir string, wantDir bool, classify func(name string) (id, target string, ok bool)) (map[string]string, error) {
	info, err := fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrRootNotFound, "%s", dir)
		}
		return nil, errors.Wrapf(err, "stat %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotDirectory, "%s", dir)
	}

	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	slices.SortFunc(entries, func(a, b os.FileInfo) int {
		return strings.Compare(a.Name(), b.Name())
	})

	names := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.Mode()&os.ModeSymlink != 0 {
			if resolved, err := fs.Stat(fs.Join(dir, name)); err == nil {
				entry = resolved
			}
		}

		if wantDir != entry.IsDir() || (!wantDir && !entry.Mode().IsRegular()) {
			continue
		}

		id, target, ok := classify(name)
		if !ok || id == "" {
			continue
		}
		if _, dup := names[id]; dup {
			continue
		}
		names[id] = target
	}

	return names, nil
}
