package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordItems(t *testing.T) {
	m := New()
	m.RecordItems("dump", "kashika", 10, 2)
	m.RecordItems("dump", "kashika", 5, 0)

	assert.Equal(t, float64(15), testutil.ToFloat64(m.ItemsTotal.WithLabelValues("dump", "kashika", "ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ItemsTotal.WithLabelValues("dump", "kashika", "failed")))
}

func TestFinish(t *testing.T) {
	m := New()
	start := time.Now().Add(-2 * time.Second)

	m.Finish("fetch", start, nil)
	m.Finish("prune", start, errors.New("boom"))

	assert.Greater(t, testutil.ToFloat64(m.JobLastSuccess.WithLabelValues("fetch")), float64(0))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.JobFailures.WithLabelValues("prune")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.JobLastSuccess.WithLabelValues("prune")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.JobDuration))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordItems("fetch", "", 3, 1)

	path := filepath.Join(t.TempDir(), "ashtadhyayi.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ashtadhyayi_items_total{job="fetch",result="ok",vritti=""} 3`)

	nested := filepath.Join(t.TempDir(), "textfile", "ashtadhyayi.prom")
	require.NoError(t, m.WriteTextfile(nested))
	assert.FileExists(t, nested)

	// the parent is a regular file
	assert.Error(t, m.WriteTextfile(filepath.Join(path, "x.prom")))
}
