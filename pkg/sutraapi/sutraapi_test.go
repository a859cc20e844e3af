package sutraapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/config"
)

const payload111 = `{"i":"11001","s":"वृद्धिरादैच्","kashika":"वृद्धिशब्दः संज्ञात्वेन विधीयते","kashika_index":"1","padachcheda":"वृद्धिः, आदैच्","nyaas":"","n":1,"tags":["samjna"]}`

type fakeFetcher struct {
	mu       sync.Mutex
	payloads map[string]string
	calls    map[string]int
}

func newFakeFetcher(payloads map[string]string) *fakeFetcher {
	return &fakeFetcher{payloads: payloads, calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++

	p, ok := f.payloads[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return []byte(p), nil
}

func TestClientFetch(t *testing.T) {
	var mu sync.Mutex
	var paths []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		if r.URL.Path != "/sutraani/json.php/1/1/1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload111)
	}))
	defer server.Close()

	c := NewClient(config.SourceAshtadhyayiCom, config.SourceConfig{
		URL:     server.URL + "/sutraani/json.php",
		Rate:    6000,
		Timeout: 5 * time.Second,
	})

	ctx := context.Background()

	body, err := c.Fetch(ctx, "1.1.1")
	require.NoError(t, err)
	assert.JSONEq(t, payload111, string(body))

	_, err = c.Fetch(ctx, "9.9.9")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Fetch(ctx, "1.1")
	assert.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/sutraani/json.php/1/1/1", "/sutraani/json.php/9/9/9"}, paths)
}

func TestRecordFields(t *testing.T) {
	rec, err := Parse("1.1.1", []byte(payload111))
	require.NoError(t, err)

	v, ok := rec.Field("kashika")
	assert.True(t, ok)
	assert.Equal(t, "वृद्धिशब्दः संज्ञात्वेन विधीयते", v)

	v, ok = rec.Field("nyaas")
	assert.True(t, ok)
	assert.Empty(t, v)

	v, ok = rec.Field("n")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	v, ok = rec.Field("tags")
	assert.True(t, ok)
	assert.Equal(t, `["samjna"]`, v)

	_, ok = rec.Field("bhashya")
	assert.False(t, ok)

	idx, ok := rec.VrittiIndex("kashika")
	assert.True(t, ok)
	assert.Equal(t, "1", idx)

	_, ok = rec.VrittiIndex("nyaas")
	assert.False(t, ok)

	got, err := rec.Query("$.tags[0]")
	require.NoError(t, err)
	assert.Equal(t, []any{"samjna"}, got)

	_, err = rec.Query("$[")
	assert.Error(t, err)

	keys := rec.Keys()
	sort.Strings(keys)
	assert.Contains(t, keys, "kashika_index")
}

func TestParseCorrupt(t *testing.T) {
	for _, in := range []string{"", "{", "[1,2]", "null"} {
		_, err := Parse("1.1.1", []byte(in))
		assert.ErrorIs(t, err, ErrCorruptDump, in)
	}
}

func TestDumpStoreLoad(t *testing.T) {
	fs := memfs.New()
	fetcher := newFakeFetcher(map[string]string{"1.1.1": payload111})
	store := NewDumpStore(fs, "/jsons", fetcher)
	ctx := context.Background()

	t.Run("missing dump is fetched", func(t *testing.T) {
		rec, err := store.Load(ctx, "1.1.1")
		require.NoError(t, err)
		assert.Equal(t, "1.1.1", rec.ID)
		assert.Equal(t, 1, fetcher.calls["1.1.1"])

		data, err := util.ReadFile(fs, "/jsons/1.1.1.json")
		require.NoError(t, err)
		assert.Equal(t, payload111, string(data))
	})

	t.Run("existing dump is reused", func(t *testing.T) {
		_, err := store.Load(ctx, "1.1.1")
		require.NoError(t, err)
		assert.Equal(t, 1, fetcher.calls["1.1.1"])
	})

	t.Run("corrupt dump is refetched once", func(t *testing.T) {
		require.NoError(t, util.WriteFile(fs, "/jsons/1.1.1.json", []byte(`{"kashika": "trunc`), 0o644))

		rec, err := store.Load(ctx, "1.1.1")
		require.NoError(t, err)
		v, _ := rec.Field("kashika")
		assert.Equal(t, "वृद्धिशब्दः संज्ञात्वेन विधीयते", v)
		assert.Equal(t, 2, fetcher.calls["1.1.1"])
	})

	t.Run("corrupt payload from the source", func(t *testing.T) {
		fetcher.payloads["1.1.2"] = "<html>"

		_, err := store.Load(ctx, "1.1.2")
		assert.ErrorIs(t, err, ErrCorruptDump)
		assert.Equal(t, 1, fetcher.calls["1.1.2"])
	})

	t.Run("unknown sutra", func(t *testing.T) {
		_, err := store.Load(ctx, "8.4.99")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDumpAll(t *testing.T) {
	fs := memfs.New()
	fetcher := newFakeFetcher(map[string]string{
		"1.1.1": payload111,
		"1.1.2": `{"kashika":"x"}`,
	})
	store := NewDumpStore(fs, "/jsons", fetcher)

	res, err := store.DumpAll(context.Background(), []string{"1.1.1", "1.1.3", "1.1.2", "bad"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Saved)
	assert.Equal(t, []string{"1.1.3", "bad"}, res.Failed)

	entries, err := fs.ReadDir("/jsons")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"1.1.1.json", "1.1.2.json"}, names)
}

func TestDumpAllWorkers(t *testing.T) {
	payloads := map[string]string{}
	var ids []string
	for i := 1; i <= 40; i++ {
		id := fmt.Sprintf("1.1.%d", i)
		ids = append(ids, id)
		if i%10 != 0 {
			payloads[id] = `{"kashika":"x"}`
		}
	}
	fetcher := newFakeFetcher(payloads)
	store := NewDumpStore(memfs.New(), "/jsons", fetcher, WithWorkers(8))

	res, err := store.DumpAll(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 36, res.Saved)
	assert.Equal(t, []string{"1.1.10", "1.1.20", "1.1.30", "1.1.40"}, res.Failed)

	for _, id := range ids {
		assert.Equal(t, 1, fetcher.calls[id], id)
	}
}

func TestDumpAllCancelled(t *testing.T) {
	store := NewDumpStore(memfs.New(), "/jsons", newFakeFetcher(map[string]string{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.DumpAll(ctx, []string{"1.1.1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDumpPath(t *testing.T) {
	store := NewDumpStore(memfs.New(), "/data/jsons", nil)
	assert.True(t, strings.HasSuffix(store.Path("3.3.160"), "/data/jsons/3.3.160.json"))

	err := store.Save(context.Background(), "3.3.160")
	assert.Error(t, err)
}
