package cmd

import (
	"context"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sirupsen/logrus"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/config"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/corpus"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/metrics"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/notification"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/sutraapi"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/sutraindex"
)

var (
	// Global flags
	FlagLogLevel     = 0
	FlagConfigFile   = "config.yaml"
	FlagConfigFolder = config.GetDefaultConfigDirectory("ashtadhyayi", FlagConfigFile)
	FlagLogFile      = "activity.log"
	FlagDryRun       bool
	FlagMetricsFile  string

	// Global vars
	cfg         *config.Configuration
	log         *logrus.Entry
	initialized bool
	jobMetrics  = metrics.New()

	// rooted at "/", so relative paths must go through hostPath first
	hostFS = osfs.New("/")
)

func initCore() {
	if initialized {
		return
	}

	if !filepath.IsAbs(FlagConfigFile) {
		FlagConfigFile = filepath.Join(FlagConfigFolder, FlagConfigFile)
	}
	if FlagLogFile != "" && !filepath.IsAbs(FlagLogFile) {
		FlagLogFile = filepath.Join(FlagConfigFolder, FlagLogFile)
	}

	logger.Init(logger.Config{
		File:      FlagLogFile,
		Verbosity: FlagLogLevel,
	})
	log = logger.GetLogger("app")

	c, err := config.Load(FlagConfigFile)
	if err != nil {
		log.WithError(err).Fatal("Failed initializing config")
	}
	cfg = c

	log.Debugf("Loaded config from %q", FlagConfigFile)
	initialized = true
}

// openCorpus binds the named vritti directory of the configured repository.
func openCorpus(vritti string) (*corpus.Corpus, error) {
	root, err := cfg.CorpusPath(vritti)
	if err != nil {
		return nil, err
	}
	strategy, err := cfg.Strategy()
	if err != nil {
		return nil, err
	}

	return corpus.New(vritti, hostPath(root),
		corpus.WithFS(hostFS),
		corpus.WithStrategy(strategy),
		corpus.WithMemberCache(cfg.MemberCache),
		corpus.WithMetadata(corpus.Metadata{"vritti": vritti}),
	)
}

func loadIndex() (*sutraindex.Index, error) {
	if cfg.IndexPath == "" {
		return nil, config.ErrNoIndex
	}
	return sutraindex.Load(cfg.IndexPath)
}

// dumpStore returns a store that refetches missing dumps from the named source.
func dumpStore(source string) (*sutraapi.DumpStore, error) {
	if cfg.DumpPath == "" {
		return nil, config.ErrNoDump
	}
	src, err := cfg.Source(source)
	if err != nil {
		return nil, err
	}
	return sutraapi.NewDumpStore(hostFS, hostPath(cfg.DumpPath), sutraapi.NewClient(source, src),
		sutraapi.WithWorkers(src.Workers)), nil
}

// hostPath makes p absolute against the working directory.
func hostPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// notifyFailures reports a finished job, itemising the ids that failed.
func notifyFailures(ctx context.Context, title, description, vritti string, failed []string, start time.Time) {
	sender := notification.NewDiscordSender(log, cfg.Notifications)
	if !sender.CanSend() {
		return
	}

	fields := make([]notification.Field, 0, len(failed))
	for _, id := range failed {
		fields = append(fields, sender.BuildField(notification.ActionFailure, notification.BuildOptions{
			ID:     id,
			Vritti: vritti,
		}))
	}

	if err := sender.Send(ctx, title, description, time.Since(start), fields, FlagDryRun); err != nil {
		log.WithError(err).Error("Failed sending notification")
	}
}

// finishJob records the outcome of a job and refreshes the metrics textfile when one is configured.
func finishJob(job string, start time.Time, err error) error {
	jobMetrics.Finish(job, start, err)
	if FlagMetricsFile != "" {
		if werr := jobMetrics.WriteTextfile(FlagMetricsFile); werr != nil {
			log.WithError(werr).Error("Failed writing metrics")
		}
	}
	return err
}
