package smoke

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/gochamp/internal/domain/model"
	"github.com/okian/gochamp/internal/domain/types"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultProbes  = 20
	DefaultTimeout = 2 * time.Minute
)

// Client is the part of the remote boundary the smoke check exercises.
type Client interface {
	Ping(ctx context.Context) (string, error)
	Authenticate(ctx context.Context, creds model.Credentials) (*model.SessionResult, error)
	ListAthletes(ctx context.Context) ([]model.Athlete, error)
	Leaderboard(ctx context.Context) ([]types.Entry, error)
	LatestResult(ctx context.Context) (*model.UploadResult, error)
}

// Config holds configuration for one smoke run.
type Config struct {
	Probes  int           // Number of concurrent listing probes
	Workers int           // Number of probe workers
	Timeout time.Duration // Deadline for the whole run
	// Credentials, when set, are used to check the login endpoint.
	Credentials *model.Credentials
	Verbose     bool
}

func (c Config) withDefaults() Config {
	if c.Probes <= 0 {
		c.Probes = DefaultProbes
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU() * 2
	}
	if c.Workers > c.Probes {
		c.Workers = c.Probes
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Stats holds run statistics.
type Stats struct {
	Message            string
	LoggedIn           bool
	Athletes           int
	ProbesSent         int
	ProbesSucceeded    int
	ProbesFailed       int
	LeaderboardEntries int
	LatestAvailable    bool
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
