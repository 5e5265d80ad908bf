package smoke

import (
	"fmt"

	"github.com/okian/gochamp/internal/domain/types"
)

// VerifyLeaderboard checks that ranks ascend and scores never increase down
// the board. Tied scores may share a rank. An empty board is consistent.
func VerifyLeaderboard(entries []types.Entry) error {
	for i, e := range entries {
		if e.Rank < 1 {
			return fmt.Errorf("%w: entry %d has rank %d", ErrInconsistency, i, e.Rank)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1]
		if e.Score > prev.Score {
			return fmt.Errorf("%w: entry %d (%.3f) scores higher than entry %d (%.3f)",
				ErrInconsistency, i, e.Score, i-1, prev.Score)
		}
		if e.Rank < prev.Rank || (e.Rank == prev.Rank && e.Score != prev.Score) {
			return fmt.Errorf("%w: entry %d has rank %d after rank %d", ErrInconsistency, i, e.Rank, prev.Rank)
		}
	}
	return nil
}
