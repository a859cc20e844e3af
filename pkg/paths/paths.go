package paths

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/pkg/errors"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
)

/* Structs */

type Path struct {
	Path         string
	RealPath     string
	FileName     string
	Directory    string
	IsDir        bool
	Size         int64
	ModifiedTime time.Time
}

/* Types */

// AcceptFunc decides whether a path is collected; it may return a rewritten path, or nil to reject.
type AcceptFunc func(string) *string

/* Vars */

var (
	log = logger.GetLogger("paths")
)

/* Public */

// InFolder walks folder in parallel and returns the accepted entries sorted by path with their total size.
// The folder itself is not included.
func InFolder(folder string, includeFiles bool, includeFolders bool, acceptFn AcceptFunc) ([]Path, uint64, error) {
	var (
		found []Path
		size  uint64
		mu    sync.Mutex
	)

	folder = filepath.Clean(folder)
	if _, err := os.Stat(folder); err != nil {
		return nil, 0, errors.Wrapf(err, "walk %s", folder)
	}

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.WithError(err).Warnf("Failed to read %s", path)
			return nil
		}
		if path == folder {
			return nil
		}

		if !includeFiles && !d.IsDir() {
			log.Tracef("Skipping file: %s", path)
			return nil
		}
		if !includeFolders && d.IsDir() {
			return nil
		}

		finalPath := path
		if acceptFn != nil {
			accepted := acceptFn(path)
			if accepted == nil {
				log.Tracef("Skipping rejected path: %s", path)
				return nil
			}
			finalPath = *accepted
		}

		info, err := d.Info()
		if err != nil {
			log.WithError(err).Errorf("Failed to get file info for %s", path)
			return nil
		}

		p := Path{
			Path:         finalPath,
			RealPath:     path,
			FileName:     d.Name(),
			Directory:    filepath.Dir(path),
			IsDir:        d.IsDir(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime(),
		}

		mu.Lock()
		found = append(found, p)
		if !p.IsDir {
			size += uint64(info.Size())
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "walk %s", folder)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].RealPath < found[j].RealPath
	})
	return found, size, nil
}

// WithExtension accepts files ending in ext (".md").
func WithExtension(ext string) AcceptFunc {
	return func(path string) *string {
		if !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}
		return &path
	}
}

// AtDepth accepts paths exactly depth levels below root, then defers to next when set.
func AtDepth(root string, depth int, next AcceptFunc) AcceptFunc {
	return func(path string) *string {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.Count(filepath.ToSlash(rel), "/")+1 != depth {
			return nil
		}
		if next != nil {
			return next(path)
		}
		return &path
	}
}
