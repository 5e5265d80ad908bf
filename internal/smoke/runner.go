// Package smoke runs a deployment check against the assessment service
// through the remote client.
package smoke

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/gochamp/pkg/logger"
)

// Run executes the complete smoke check. Stats are returned even when a
// step fails so callers can report how far the run got.
func Run(ctx context.Context, client Client, config Config) (*Stats, error) {
	config = config.withDefaults()
	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	log := logger.Get().Named("smoke")
	stats := &Stats{StartTime: time.Now()}
	defer func() {
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
	}()

	log.Info(ctx, "starting smoke check",
		logger.Int("probes", config.Probes),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("login", config.Credentials != nil))

	// Step 1: reachability
	msg, err := client.Ping(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	stats.Message = msg
	log.Info(ctx, "service is reachable", logger.String("message", msg))

	// Step 2: login
	if config.Credentials != nil {
		if _, err := client.Authenticate(ctx, *config.Credentials); err != nil {
			return stats, fmt.Errorf("%w: %w", ErrLogin, err)
		}
		stats.LoggedIn = true
		log.Info(ctx, "login accepted", logger.String("email", config.Credentials.Email))
	}

	// Step 3: listing
	athletes, err := client.ListAthletes(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrListing, err)
	}
	stats.Athletes = len(athletes)

	// Step 4: overlapping listing probes
	if err := runProbes(ctx, log, client, config, stats); err != nil {
		return stats, err
	}

	// Step 5: leaderboard
	entries, err := client.Leaderboard(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrLeaderboard, err)
	}
	stats.LeaderboardEntries = len(entries)
	if err := VerifyLeaderboard(entries); err != nil {
		return stats, err
	}
	log.Info(ctx, "leaderboard consistency verified", logger.Int("entries", len(entries)))

	// Step 6: latest result. The service answers 404 until something was
	// uploaded, so a failure here is reported but not fatal.
	if latest, err := client.LatestResult(ctx); err != nil {
		log.Warn(ctx, "latest result unavailable", logger.Error(err))
	} else {
		stats.LatestAvailable = true
		log.Info(ctx, "latest result", logger.Float64("score", latest.Score))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate float64
	if stats.ProbesSent > 0 {
		successRate = float64(stats.ProbesSucceeded) / float64(stats.ProbesSent) * 100
	}
	log.Info(ctx, "final statistics",
		logger.Bool("loggedIn", stats.LoggedIn),
		logger.Int("athletes", stats.Athletes),
		logger.Int("probesSent", stats.ProbesSent),
		logger.Int("probesSucceeded", stats.ProbesSucceeded),
		logger.Int("probesFailed", stats.ProbesFailed),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Bool("latestAvailable", stats.LatestAvailable),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate))
}
