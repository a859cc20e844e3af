package notification

import (
	"context"
	"time"
)

type Action int

const (
	ActionFetch Action = iota + 1
	ActionDump
	ActionPrune
	ActionFailure
)

type Sender interface {
	CanSend() bool
	Send(ctx context.Context, title string, description string, runTime time.Duration, fields []Field, dryRun bool) error
	BuildField(action Action, options BuildOptions) Field
	Name() string
}

type Field struct {
	Name  string
	Value string
}

type BuildOptions struct {
	ID     string
	Vritti string
	Source string

	Path string
	Size int64

	Err error
}
