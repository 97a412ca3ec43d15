package engine

import (
	"time"

	"github.com/hailam/chessengine/internal/board"
)

// UCILimits contains UCI time control parameters.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime (remaining time for each color)
	Inc       [2]time.Duration // winc, binc (increment per move)
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move (overrides other time controls)
	Depth     int              // maximum search depth
	Nodes     uint64           // node limit; accepted but not enforced by the search
	Infinite  bool             // search until stopped
	Ponder    bool             // ponder mode
}

// TimeManager handles time allocation for searches.
type TimeManager struct {
	optimumTime time.Duration // Target time for this move
	maximumTime time.Duration // Maximum time allowed
	startTime   time.Time     // When search started
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init initializes the time manager for a new search. moveOverhead is
// subtracted from the computed budget to leave headroom for the UCI
// round-trip; ply is unused by the budget formula but kept for API symmetry
// with the rest of the search stack.
func (tm *TimeManager) Init(limits UCILimits, us board.Color, ply int, moveOverhead time.Duration) {
	tm.startTime = time.Now()

	if limits.Depth > 0 && limits.Time[us] == 0 && limits.MoveTime == 0 && !limits.Infinite {
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		return
	}

	if limits.MoveTime > 0 {
		budget := limits.MoveTime - moveOverhead
		if budget < 10*time.Millisecond {
			budget = 10 * time.Millisecond
		}
		tm.optimumTime = budget
		tm.maximumTime = budget
		return
	}

	if limits.Infinite || limits.Time[us] == 0 {
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		return
	}

	remaining := limits.Time[us]
	inc := limits.Inc[us]

	// Low on time with an increment to bank on: applies regardless of
	// whether movestogo was given explicitly or left at sudden death.
	if remaining < 1500*time.Millisecond && inc > 0 && limits.Depth == 0 {
		stop := inc - 50*time.Millisecond
		if stop < 0 {
			stop = 0
		}
		stop -= moveOverhead
		if stop < 0 {
			stop = 0
		}
		tm.optimumTime = stop
		tm.maximumTime = stop
		return
	}

	mtg := limits.MovesToGo
	if mtg == 0 {
		budget := remaining - moveOverhead
		if budget < 0 {
			budget = 0
		}
		tm.optimumTime = budget
		tm.maximumTime = budget
		return
	}

	budget := remaining / time.Duration(mtg)
	if budget > 1500*time.Millisecond {
		budget -= 50 * time.Millisecond
	}
	budget += inc
	budget -= moveOverhead
	if budget < 10*time.Millisecond {
		budget = 10 * time.Millisecond
	}

	tm.optimumTime = budget
	tm.maximumTime = budget
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// OptimumTime returns the target time for this move.
func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

// MaximumTime returns the maximum time allowed.
func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// ShouldStop returns true if we should stop searching.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.maximumTime
}

// PastOptimum returns true if we've exceeded the optimum time.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.optimumTime
}

