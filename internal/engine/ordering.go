package engine

import (
	"github.com/hailam/chessengine/internal/board"
)

// Move ordering score tiers, highest first.
const (
	pvMoveScore  = 20000
	mvvLvaBase   = 10000
	killerScore1 = 9000
	killerScore2 = 8000
)

// mvvLva[attacker][victim] = 100*(6-attacker) + (1+victim); a lower-value
// attacker taking a higher-value victim ranks first.
var mvvLva [6][6]int

func init() {
	for attacker := board.Pawn; attacker <= board.King; attacker++ {
		for victim := board.Pawn; victim <= board.King; victim++ {
			mvvLva[attacker][victim] = 100*(6-int(attacker)) + (1 + int(victim))
		}
	}
}

// MoveOrderer ranks moves for search: PV move, then MVV-LVA captures, then
// killer moves, then the history heuristic for everything else.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
	history [12][64]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets killers and ages history for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves assigns ordering scores to every move in the list.
func (mo *MoveOrderer) ScoreMoves(pos *board.Board, moves *board.MoveList, ply int, pvMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(pos, moves.Get(i), ply, pvMove)
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(pos *board.Board, m board.Move, ply int, pvMove board.Move) int {
	if m == pvMove {
		return pvMoveScore
	}

	if m.IsCapture() {
		attackerPiece := pos.PieceAt(m.From())
		attacker := attackerPiece.Type()

		var victim board.PieceType
		if m.IsEnPassant() {
			victim = board.Pawn
		} else {
			victim = pos.PieceAt(m.To()).Type()
		}

		return mvvLva[attacker][victim] + mvvLvaBase
	}

	if m == mo.killers[ply][0] {
		return killerScore1
	}
	if m == mo.killers[ply][1] {
		return killerScore2
	}

	piece := pos.PieceAt(m.From())
	return mo.history[piece][m.To()]
}

// SortMoves sorts moves by score, descending (selection sort; small lists).
func SortMoves(moves *board.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove selects the best remaining move and swaps it into position index.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records a quiet move that caused a beta cutoff at ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory bumps the history score of a quiet move by depth^2.
func (mo *MoveOrderer) UpdateHistory(pos *board.Board, m board.Move, depth int) {
	piece := pos.PieceAt(m.From())
	mo.history[piece][m.To()] += depth * depth
	if mo.history[piece][m.To()] > 400000 {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}
