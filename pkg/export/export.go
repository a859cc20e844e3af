// Package export copies a corpus into a queryable SQLite database.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/oj"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/corpus"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/expression"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	vritti   TEXT NOT NULL,
	idx      TEXT NOT NULL,
	chapter  TEXT NOT NULL,
	section  TEXT NOT NULL,
	item     TEXT NOT NULL,
	metadata JSON,
	content  TEXT,
	run_id   TEXT NOT NULL,
	PRIMARY KEY (vritti, idx)
);
CREATE INDEX IF NOT EXISTS idx_items_section ON items(vritti, chapter, section);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	vritti      TEXT NOT NULL,
	filter      TEXT,
	match       TEXT NOT NULL DEFAULT 'all',
	items       INTEGER NOT NULL,
	exported_at TIMESTAMP NOT NULL
);
`

var log = logger.GetLogger("export")

// Open creates dbPath and its directory if needed and ensures the schema exists.
func Open(dbPath string) (*sql.DB, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "resolve database path")
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", filepath.ToSlash(absPath))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", absPath)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping sqlite %s", absPath)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return db, nil
}

// SQLite writes every item of c accepted by filter into the items table of dbPath,
// replacing rows of the same vritti and index. It returns the number of rows written.
func SQLite(ctx context.Context, c *corpus.Corpus, dbPath string, filter expression.Filter) (int, error) {
	db, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return Items(ctx, db, c, filter)
}

// Items is SQLite against an already open database. All rows go in one transaction,
// together with a runs row recording the export.
func Items(ctx context.Context, db *sql.DB, c *corpus.Corpus, filter expression.Filter) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	runID := uuid.New().String()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO items (vritti, idx, chapter, section, item, metadata, content, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	count := 0
	for it, err := range c.Items(false) {
		if err != nil {
			return count, err
		}
		if err := ctx.Err(); err != nil {
			return count, err
		}

		env, err := expression.NewEnv(c.Name, it)
		if err != nil {
			return count, err
		}
		ok, err := filter.Match(env)
		if err != nil {
			return count, errors.Wrapf(err, "filter %s", it.Index())
		}
		if !ok {
			continue
		}

		fields := make(map[string]any, len(env.Meta))
		for k, v := range env.Meta {
			fields[k] = v
		}
		meta := oj.JSON(fields, &oj.Options{Sort: true})
		if _, err := stmt.ExecContext(ctx, c.Name, env.Index, env.Chapter, env.Section, env.Item, meta, env.Content, runID); err != nil {
			return count, errors.Wrapf(err, "insert %s", env.Index)
		}
		count++
	}

	texts := make([]any, 0, len(filter.Expressions))
	for _, text := range filter.Texts() {
		texts = append(texts, text)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, vritti, filter, match, items, exported_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, c.Name, oj.JSON(texts), filter.Mode(), count, time.Now().UTC()); err != nil {
		return count, errors.Wrap(err, "record run")
	}

	if err := tx.Commit(); err != nil {
		return count, errors.Wrap(err, "commit")
	}
	log.Debugf("Exported %d items of %s in run %s", count, c.Name, runID)
	return count, nil
}
