package smoke

import "errors"

// Error constants.
var (
	ErrUnreachable   = errors.New("service unreachable")
	ErrLogin         = errors.New("login check failed")
	ErrListing       = errors.New("athlete listing failed")
	ErrProbes        = errors.New("listing probes failed")
	ErrLeaderboard   = errors.New("leaderboard check failed")
	ErrInconsistency = errors.New("leaderboard inconsistent")
)
