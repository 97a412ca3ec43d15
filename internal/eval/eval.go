// Package eval provides the default static evaluation function injected into
// the searcher. It is deliberately small: material plus piece-square tables,
// tapered between middlegame and endgame by remaining non-pawn material. Any
// type satisfying board.Evaluator may be substituted for it.
package eval

import "github.com/hailam/chessengine/internal/board"

// Piece values in centipawns, indexed by board.PieceType.
var pieceValue = [6]int{100, 320, 330, 500, 900, 0}

// phaseWeight approximates how much each piece type contributes to "how
// middlegame-y" the position still is; queens count most, pawns not at all.
var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

var totalPhase = 4*phaseWeight[board.Knight] + 4*phaseWeight[board.Bishop] +
	4*phaseWeight[board.Rook] + 2*phaseWeight[board.Queen]

// Material is the default board.Evaluator: material count plus tapered PST.
type Material struct{}

// Evaluate returns a centipawn score from the side-to-move's perspective.
func (Material) Evaluate(b *board.Board) int {
	phase := 0
	var mg, eg [2]int

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := b.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				sqIdx := int(sq)
				if c == board.Black {
					sqIdx ^= 56 // mirror vertically for black's perspective on the table
				}
				mg[c] += pieceValue[pt] + pstMidgame[pt][sqIdx]
				eg[c] += pieceValue[pt] + pstEndgame[pt][sqIdx]
				phase += phaseWeight[pt]
			}
		}
	}

	if phase > totalPhase {
		phase = totalPhase
	}

	mgScore := mg[board.White] - mg[board.Black]
	egScore := eg[board.White] - eg[board.Black]
	tapered := (mgScore*phase + egScore*(totalPhase-phase)) / totalPhase

	if b.SideToMove == board.Black {
		return -tapered
	}
	return tapered
}
