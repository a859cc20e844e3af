package runtime

// set via ldflags
var (
	Version   = "0.0.0-dev"
	GitCommit = ""
	Timestamp = ""
)
