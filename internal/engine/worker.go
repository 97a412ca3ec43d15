package engine

import (
	"context"

	"github.com/hailam/chessengine/internal/board"
	"golang.org/x/sync/errgroup"
)

// WorkerPool runs a Lazy-SMP search: every worker searches the same root
// position to increasing depth against one shared transposition table, each
// with its own move orderer so killer/history tables don't contend. Search
// waits for every worker and reports the result of the one that reached the
// greatest depth; since all workers share the TT, the other workers' work
// still feeds entries that worker can probe.
type WorkerPool struct {
	tt       *TranspositionTable
	eval     board.Evaluator
	searcher []*Searcher
}

// NewWorkerPool creates a pool of n searchers sharing tt. n is clamped to
// at least 1.
func NewWorkerPool(n int, tt *TranspositionTable, evaluator board.Evaluator) *WorkerPool {
	if n < 1 {
		n = 1
	}
	wp := &WorkerPool{tt: tt, eval: evaluator}
	wp.searcher = make([]*Searcher, n)
	for i := range wp.searcher {
		wp.searcher[i] = NewSearcher(tt, evaluator)
	}
	return wp
}

// Resize changes the number of worker searchers, preserving the shared TT
// and evaluator.
func (wp *WorkerPool) Resize(n int) {
	if n < 1 {
		n = 1
	}
	if n == len(wp.searcher) {
		return
	}
	searchers := make([]*Searcher, n)
	for i := range searchers {
		if i < len(wp.searcher) {
			searchers[i] = wp.searcher[i]
		} else {
			searchers[i] = NewSearcher(wp.tt, wp.eval)
		}
	}
	wp.searcher = searchers
}

// Stop signals every worker to stop as soon as it next polls.
func (wp *WorkerPool) Stop() {
	for _, s := range wp.searcher {
		s.Stop()
	}
}

// Nodes returns the total node count across all workers from the last search.
func (wp *WorkerPool) Nodes() uint64 {
	var total uint64
	for _, s := range wp.searcher {
		total += s.Nodes()
	}
	return total
}

// PoolResult is the outcome of a parallel search.
type PoolResult struct {
	Move  board.Move
	Score int
	Depth int
	PV    []board.Move
	Nodes uint64
}

// Search runs every worker's iterative-deepening search concurrently
// against the same position and picks the result from the worker that
// reached the greatest depth (ties broken by search order, worker 0 first,
// which conventionally gets the least-reduced move ordering history).
func (wp *WorkerPool) Search(ctx context.Context, pos *board.Board, maxDepth int, shouldStop func() bool, history []uint64) PoolResult {
	wp.tt.NewSearch()

	type outcome struct {
		move  board.Move
		score int
		pv    []board.Move
	}
	outcomes := make([]outcome, len(wp.searcher))

	g, _ := errgroup.WithContext(ctx)
	for i := range wp.searcher {
		i := i
		g.Go(func() error {
			move, score := wp.searcher[i].SearchIterative(pos, maxDepth, shouldStop, history)
			outcomes[i] = outcome{move: move, score: score, pv: wp.searcher[i].GetPV()}
			return nil
		})
	}
	_ = g.Wait()

	best := outcomes[0]
	bestDepth := wp.searcher[0].rootDepth
	for i := 1; i < len(outcomes); i++ {
		if outcomes[i].move == board.NoMove {
			continue
		}
		if wp.searcher[i].rootDepth > bestDepth {
			best = outcomes[i]
			bestDepth = wp.searcher[i].rootDepth
		}
	}

	return PoolResult{
		Move:  best.move,
		Score: best.score,
		Depth: bestDepth,
		PV:    best.pv,
		Nodes: wp.Nodes(),
	}
}
