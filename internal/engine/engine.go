package engine

import (
	"context"
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hailam/chessengine/internal/board"
	"github.com/hailam/chessengine/internal/eval"
)

// NumWorkers is the default number of parallel search workers.
var NumWorkers = runtime.GOMAXPROCS(0)

// SearchInfo reports progress of an in-flight search, suitable for relaying
// as a UCI "info" line.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int
}

// SearchLimits specifies constraints on a search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit)
	Nodes    uint64        // Node limit; accepted but not enforced by SearchWithLimits
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
}

// EngineOptions holds the ambient UCI-tunable options.
type EngineOptions struct {
	HashMB         int
	Threads        int
	MoveOverheadMS int
}

// DefaultEngineOptions returns the hard-coded defaults: 256 MB hash, one
// thread, 30 ms move overhead.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{HashMB: 256, Threads: 1, MoveOverheadMS: 30}
}

// Engine owns the shared transposition table, evaluator and worker pool and
// is the object the UCI dispatcher drives.
type Engine struct {
	pool     *WorkerPool
	tt       *TranspositionTable
	eval     board.Evaluator
	opts     EngineOptions
	stopFlag atomic.Bool

	rootPosHashes []uint64

	OnInfo func(SearchInfo)
}

// NewEngine creates a chess engine using the given options. A zero-value
// Evaluator argument selects the default material+PST evaluation.
func NewEngine(opts EngineOptions, evaluator board.Evaluator) *Engine {
	if evaluator == nil {
		evaluator = eval.Material{}
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.HashMB < 1 {
		opts.HashMB = 1
	}

	tt := NewTranspositionTable(opts.HashMB)
	return &Engine{
		pool: NewWorkerPool(opts.Threads, tt, evaluator),
		tt:   tt,
		eval: evaluator,
		opts: opts,
	}
}

// SetOption applies a UCI option change. Hash and Threads take effect on
// the next search; unknown names are ignored.
func (e *Engine) SetOption(name string, value int) {
	switch name {
	case "Hash":
		if value < 1 {
			value = 1
		}
		e.opts.HashMB = value
		e.tt = NewTranspositionTable(value)
		e.pool = NewWorkerPool(e.opts.Threads, e.tt, e.eval)
	case "Threads":
		if value < 1 {
			value = 1
		}
		e.opts.Threads = value
		e.pool.Resize(value)
	case "MoveOverhead":
		if value < 0 {
			value = 0
		}
		e.opts.MoveOverheadMS = value
	}
}

// SetPositionHistory records prior position hashes for repetition detection.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.rootPosHashes = make([]uint64, len(hashes))
	copy(e.rootPosHashes, hashes)
}

// Stop signals the in-flight search to stop as soon as it next polls.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
	e.pool.Stop()
}

// Clear resets the transposition table.
func (e *Engine) Clear() {
	e.tt.Clear()
}

// Evaluate returns the static evaluation of a position from the side to
// move's perspective.
func (e *Engine) Evaluate(pos *board.Board) int {
	return e.eval.Evaluate(pos)
}

// Perft counts leaf nodes at the given depth; used for move generator
// validation, not search.
func (e *Engine) Perft(pos *board.Board, depth int) uint64 {
	return pos.Perft(depth)
}

// SearchWithLimits finds the best move subject to fixed limits (depth,
// movetime, or infinite). It reports progress via OnInfo if set.
func (e *Engine) SearchWithLimits(pos *board.Board, limits SearchLimits) board.Move {
	e.stopFlag.Store(false)

	maxDepth := MaxPly - 1
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	var deadline time.Time
	if limits.MoveTime > 0 {
		overhead := time.Duration(e.opts.MoveOverheadMS) * time.Millisecond
		budget := limits.MoveTime - overhead
		if budget < 10*time.Millisecond {
			budget = 10 * time.Millisecond
		}
		deadline = time.Now().Add(budget)
	}

	shouldStop := func() bool {
		if e.stopFlag.Load() {
			return true
		}
		if limits.Infinite {
			return false
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return true
		}
		return false
	}

	start := time.Now()
	result := e.pool.Search(context.Background(), pos, maxDepth, shouldStop, e.rootPosHashes)

	if e.OnInfo != nil {
		e.OnInfo(SearchInfo{
			Depth:    result.Depth,
			Score:    result.Score,
			Nodes:    result.Nodes,
			Time:     time.Since(start),
			PV:       result.PV,
			HashFull: e.tt.HashFull(),
		})
	}

	return result.Move
}

// SearchWithUCILimits finds the best move using UCI clock parameters.
func (e *Engine) SearchWithUCILimits(pos *board.Board, limits UCILimits, ply int) board.Move {
	e.stopFlag.Store(false)

	tm := NewTimeManager()
	tm.Init(limits, pos.SideToMove, ply, time.Duration(e.opts.MoveOverheadMS)*time.Millisecond)

	maxDepth := MaxPly - 1
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	shouldStop := func() bool {
		if e.stopFlag.Load() {
			return true
		}
		if limits.Infinite {
			return false
		}
		return tm.ShouldStop()
	}

	start := time.Now()
	result := e.pool.Search(context.Background(), pos, maxDepth, shouldStop, e.rootPosHashes)

	if e.OnInfo != nil {
		e.OnInfo(SearchInfo{
			Depth:    result.Depth,
			Score:    result.Score,
			Nodes:    result.Nodes,
			Time:     time.Since(start),
			PV:       result.PV,
			HashFull: e.tt.HashFull(),
		})
	}

	log.Printf("[engine] search complete: depth=%d score=%d move=%s nodes=%d",
		result.Depth, result.Score, result.Move, result.Nodes)

	return result.Move
}
