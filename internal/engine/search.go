package engine

import (
	"sync/atomic"

	"github.com/hailam/chessengine/internal/board"
	"github.com/hailam/chessengine/internal/eval"
)

// Search constants.
const (
	Infinity  = 50000
	MateScore = 48000
	MateValue = 49000
	MaxPly    = 128

	nullMoveReduction = 2
	lmrMinLegal       = 4
	lmrMinDepth       = 3
	aspirationWindow  = 50
)

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher performs the iterative-deepening alpha-beta search.
type Searcher struct {
	pos     *board.Board
	tt      *TranspositionTable
	orderer *MoveOrderer
	eval    board.Evaluator

	nodes    uint64
	stopFlag atomic.Bool
	timeUp   func() bool

	pv PVTable

	undoStack [MaxPly]board.UndoInfo

	// history holds Zobrist hashes of positions played before the root of
	// this search (game history supplied by the engine). pathHashes records
	// the hash at each ply reached within the current search tree. Since the
	// Zobrist hash encodes side-to-move, an exact match against either slice
	// implies a true repetition.
	history    []uint64
	pathHashes [MaxPly]uint64

	rootBestMove board.Move
	rootBestScor int
	rootDepth    int
}

// NewSearcher creates a new searcher backed by the given transposition table.
// A nil evaluator defaults to the built-in material+PST evaluation.
func NewSearcher(tt *TranspositionTable, evaluator board.Evaluator) *Searcher {
	if evaluator == nil {
		evaluator = eval.Material{}
	}
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		eval:    evaluator,
	}
}

// Stop signals the search to stop as soon as it next polls.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset resets the searcher for a new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.Clear()
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// SearchIterative runs iterative deepening up to maxDepth, or until
// shouldStop reports true. It returns the best move and score found at the
// deepest completed iteration. shouldStop is polled periodically; it is the
// caller's time manager deadline check.
func (s *Searcher) SearchIterative(pos *board.Board, maxDepth int, shouldStop func() bool, history []uint64) (board.Move, int) {
	s.pos = pos.Copy()
	s.Reset()
	s.timeUp = shouldStop
	s.history = history

	var bestMove board.Move
	bestScore := 0
	alpha, beta := -Infinity, Infinity

	for depth := 1; depth <= maxDepth && depth < MaxPly; depth++ {
		s.rootDepth = depth

		if depth >= 5 {
			alpha = bestScore - aspirationWindow
			beta = bestScore + aspirationWindow
		} else {
			alpha, beta = -Infinity, Infinity
		}

		var score int
		for {
			score = s.negamax(depth, 0, alpha, beta, true)

			if s.stopFlag.Load() || (s.timeUp != nil && s.timeUp()) {
				break
			}

			if score <= alpha {
				alpha = maxInt(alpha-aspirationWindow*2, -Infinity)
				continue
			}
			if score >= beta {
				beta = minInt(beta+aspirationWindow*2, Infinity)
				continue
			}
			break
		}

		if s.stopFlag.Load() || (s.timeUp != nil && s.timeUp()) {
			if depth == 1 {
				bestScore = score
				if s.pv.length[0] > 0 {
					bestMove = s.pv.moves[0][0]
				}
			}
			break
		}

		bestScore = score
		if s.pv.length[0] > 0 {
			bestMove = s.pv.moves[0][0]
		}
		s.rootBestMove = bestMove
		s.rootBestScor = bestScore

		if bestScore > MateScore-MaxPly || bestScore < -MateScore+MaxPly {
			break
		}
	}

	return bestMove, bestScore
}

// Search performs a single fixed-depth search (used by perft-adjacent tools
// and tests that want a deterministic single iteration).
func (s *Searcher) Search(pos *board.Board, depth int) (board.Move, int) {
	s.pos = pos.Copy()
	s.Reset()
	s.timeUp = nil
	s.history = nil

	score := s.negamax(depth, 0, -Infinity, Infinity, true)

	var bestMove board.Move
	if s.pv.length[0] > 0 {
		bestMove = s.pv.moves[0][0]
	}

	return bestMove, score
}

// negamax implements alpha-beta search with null-move pruning, late-move
// reductions and principal variation search.
func (s *Searcher) negamax(depth, ply int, alpha, beta int, pvNode bool) int {
	if s.nodes&2047 == 0 {
		if s.stopFlag.Load() || (s.timeUp != nil && s.timeUp()) {
			s.stopFlag.Store(true)
			return 0
		}
	}

	s.nodes++
	s.pv.length[ply] = ply
	s.pathHashes[ply] = s.pos.Hash

	if ply > 0 && s.isDraw(ply) {
		return 0
	}

	if ply >= MaxPly-1 {
		return s.eval.Evaluate(s.pos)
	}

	origAlpha := alpha

	var ttMove board.Move
	ttEntry, found := s.tt.Probe(s.pos.Hash, s.pos.Lock)
	if found {
		ttMove = ttEntry.BestMove
		if int(ttEntry.Depth) >= depth && !pvNode {
			score := AdjustScoreFromTT(int(ttEntry.Score), ply)
			switch ttEntry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	inCheck := s.pos.InCheck()

	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	// Null-move pruning: if we can skip a move and still fail high, the
	// position is so good a cutoff is safe. Disabled in check, at the
	// root, in pure pawn endgames (zugzwang risk) and near mate bounds.
	if !pvNode && !inCheck && ply > 0 && depth >= 3 && s.pos.HasNonPawnMaterial() &&
		beta < MateScore-MaxPly && beta > -MateScore+MaxPly {
		undo := s.pos.MakeNullMove()
		score := -s.negamax(depth-1-nullMoveReduction, ply+1, -beta, -beta+1, false)
		s.pos.UnmakeNullMove(undo)

		if s.stopFlag.Load() {
			return 0
		}
		if score >= beta {
			return beta
		}
	}

	moves := s.pos.GenerateLegalMoves()

	if moves.Len() == 0 {
		if inCheck {
			return -MateValue + ply
		}
		return 0
	}

	// Check extension: searching one ply deeper out of check avoids
	// misjudging forced sequences at the horizon.
	if inCheck {
		depth++
	}

	scores := s.orderer.ScoreMoves(s.pos, moves, ply, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound
	legal := 0

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		s.undoStack[ply] = s.pos.MakeMove(move)
		legal++

		var score int
		reduced := false

		if legal >= lmrMinLegal && depth >= lmrMinDepth && !inCheck &&
			!move.IsCapture() && !move.IsPromotion() {
			reduction := 1
			if legal >= 8 {
				reduction = 2
			}
			reduced = true
			score = -s.negamax(depth-1-reduction, ply+1, -alpha-1, -alpha, false)
		} else if legal == 1 {
			score = -s.negamax(depth-1, ply+1, -beta, -alpha, pvNode)
		} else {
			score = -s.negamax(depth-1, ply+1, -alpha-1, -alpha, false)
		}

		// Re-search at full depth/window if the reduced or null-window
		// probe suggested this move might actually beat alpha.
		if (reduced || legal > 1) && score > alpha && score < beta {
			score = -s.negamax(depth-1, ply+1, -beta, -alpha, pvNode)
		}

		s.pos.UnmakeMove(move, s.undoStack[ply])

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				flag = TTExact

				s.pv.moves[ply][ply] = move
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if score >= beta {
			s.tt.Store(s.pos.Hash, s.pos.Lock, depth, AdjustScoreToTT(score, ply), TTLowerBound, bestMove)

			if !move.IsCapture() {
				s.orderer.UpdateKillers(move, ply)
				s.orderer.UpdateHistory(s.pos, move, depth)
			}

			return score
		}
	}

	if flag == TTExact {
		// keep
	} else if bestScore > origAlpha {
		flag = TTExact
	}

	s.tt.Store(s.pos.Hash, s.pos.Lock, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)

	return bestScore
}

// quiescence searches only captures and promotions (GenerateCaptures) to
// avoid the horizon effect. Non-capturing check evasions are not searched
// here; a position in check is still scored from its stand-pat evaluation.
func (s *Searcher) quiescence(ply int, alpha, beta int) int {
	if ply >= MaxPly-1 {
		return s.eval.Evaluate(s.pos)
	}

	if s.stopFlag.Load() {
		return 0
	}

	s.nodes++

	standPat := s.eval.Evaluate(s.pos)

	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	const queenValue = 900
	if standPat+queenValue < alpha {
		return alpha
	}

	moves := s.pos.GenerateCaptures()
	scores := s.orderer.ScoreMoves(s.pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if !s.pos.InCheck() {
			const pawnValue = 100
			captureValue := pawnValue
			if move.IsEnPassant() {
				captureValue = pawnValue
			} else if captured := s.pos.PieceAt(move.To()); captured != board.NoPiece {
				captureValue = capturePieceValue[captured.Type()]
			}
			if move.IsPromotion() {
				captureValue += queenValue - pawnValue
			}
			if standPat+captureValue+200 < alpha {
				continue
			}
		}

		undo := s.pos.MakeMove(move)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.pos.UnmakeMove(move, undo)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

var capturePieceValue = [6]int{100, 320, 330, 500, 900, 0}

// isDraw checks for draw by the 50-move rule, insufficient material, or
// repetition. A repetition is any earlier position (either from the game
// history supplied by the engine, or from an earlier ply within this search
// tree) with the identical Zobrist hash; since the hash encodes side-to-move,
// a match is always a true repetition of the position to move.
func (s *Searcher) isDraw(ply int) bool {
	if s.pos.HalfMoveClock >= 100 {
		return true
	}
	if s.pos.IsInsufficientMaterial() {
		return true
	}

	hash := s.pos.Hash
	for i := 0; i < ply; i++ {
		if s.pathHashes[i] == hash {
			return true
		}
	}
	for _, h := range s.history {
		if h == hash {
			return true
		}
	}
	return false
}

// GetPV returns the principal variation from the last search.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	for i := 0; i < s.pv.length[0]; i++ {
		pv[i] = s.pv.moves[0][i]
	}
	return pv
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
