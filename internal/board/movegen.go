package board

// GenerateLegalMoves generates every legal move for the side to move.
// Moves are produced pseudo-legally by piece class, then filtered against the
// danger/checkers/pinned bitboards computed once per call — the pin-aware
// design, rather than a make/undo replay per candidate move.
func (p *Board) GenerateLegalMoves() *MoveList {
	pseudo := NewMoveList()
	p.generateAllMoves(pseudo)
	return p.filterPinAware(pseudo)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves (may leave king in check).
func (p *Board) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return ml
}

// GenerateCaptures generates legal captures, capture-promotions and
// non-capturing promotions only.
func (p *Board) GenerateCaptures() *MoveList {
	pseudo := NewMoveList()
	p.generateCaptures(pseudo)
	return p.filterPinAware(pseudo)
}

func (p *Board) filterPinAware(pseudo *MoveList) *MoveList {
	us := p.SideToMove
	danger := p.dangerBitboard(us)
	pinned := p.ComputePinned()
	ksq := p.KingSquare[us]

	result := NewMoveList()
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		if p.isLegalFast(m, ksq, p.Checkers, pinned, danger) {
			result.Add(m)
		}
	}
	return result
}

// dangerBitboard returns the squares the opponent of us attacks, with the
// friendly king removed from the blocker set so that stepping away along a
// slider's ray is still recognized as unsafe.
func (p *Board) dangerBitboard(us Color) Bitboard {
	them := us.Other()
	occ := p.AllOccupied &^ p.Pieces[us][King]

	var danger Bitboard
	pawns := p.Pieces[them][Pawn]
	for pawns != 0 {
		sq := pawns.PopLSB()
		danger |= pawnAttacks[them][sq]
	}
	knights := p.Pieces[them][Knight]
	for knights != 0 {
		danger |= KnightAttacks(knights.PopLSB())
	}
	bishopsQueens := p.Pieces[them][Bishop] | p.Pieces[them][Queen]
	for bishopsQueens != 0 {
		danger |= BishopAttacks(bishopsQueens.PopLSB(), occ)
	}
	rooksQueens := p.Pieces[them][Rook] | p.Pieces[them][Queen]
	for rooksQueens != 0 {
		danger |= RookAttacks(rooksQueens.PopLSB(), occ)
	}
	danger |= KingAttacks(p.KingSquare[them])
	return danger
}

// isLegalFast decides legality from precomputed danger/checkers/pinned
// bitboards, branching on the number of checkers the way a pin-aware
// generator does, instead of making and unmaking the move.
func (p *Board) isLegalFast(m Move, ksq Square, checkers, pinned, danger Bitboard) bool {
	from, to := m.From(), m.To()

	if from == ksq {
		if m.IsCastling() {
			return true // squares between/traversed already validated in generation
		}
		return danger&SquareBB(to) == 0
	}

	if m.IsEnPassant() {
		return p.enPassantIsLegal(m, ksq)
	}

	switch checkers.PopCount() {
	case 0:
		if pinned&SquareBB(from) != 0 {
			return Line(ksq, from)&SquareBB(to) != 0
		}
		return true
	case 1:
		checkerSq := checkers.LSB()
		resolves := to == checkerSq || Between(checkerSq, ksq)&SquareBB(to) != 0
		if !resolves {
			return false
		}
		if pinned&SquareBB(from) != 0 {
			return Line(ksq, from)&SquareBB(to) != 0
		}
		return true
	default:
		return false // double check: only king moves (handled above) resolve it
	}
}

// enPassantIsLegal simulates the capture to catch the rare case where
// removing both pawns exposes the king along their shared rank — a case the
// ordinary pinned bitboard, which only tracks single blockers, cannot see.
func (p *Board) enPassantIsLegal(m Move, ksq Square) bool {
	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()

	var capSq Square
	if us == White {
		capSq = to - 8
	} else {
		capSq = to + 8
	}

	occ := p.AllOccupied
	occ &^= SquareBB(from)
	occ &^= SquareBB(capSq)
	occ |= SquareBB(to)

	bishopsQueens := p.Pieces[them][Bishop] | p.Pieces[them][Queen]
	if BishopAttacks(ksq, occ)&bishopsQueens != 0 {
		return false
	}
	rooksQueens := p.Pieces[them][Rook] | p.Pieces[them][Queen]
	if RookAttacks(ksq, occ)&rooksQueens != 0 {
		return false
	}
	return true
}

// IsLegal checks a single pseudo-legal move for legality without requiring
// the caller to have precomputed danger/checkers/pinned bitboards.
func (p *Board) IsLegal(m Move) bool {
	us := p.SideToMove
	danger := p.dangerBitboard(us)
	pinned := p.ComputePinned()
	return p.isLegalFast(m, p.KingSquare[us], p.Checkers, pinned, danger)
}

// generateAllMoves generates all pseudo-legal moves.
func (p *Board) generateAllMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	p.generatePawnMoves(ml, us, enemies, occupied)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		addStepMoves(ml, from, KnightAttacks(from)&^p.Occupied[us], enemies)
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		addStepMoves(ml, from, BishopAttacks(from, occupied)&^p.Occupied[us], enemies)
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		addStepMoves(ml, from, RookAttacks(from, occupied)&^p.Occupied[us], enemies)
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		addStepMoves(ml, from, QueenAttacks(from, occupied)&^p.Occupied[us], enemies)
	}

	p.generateKingMoves(ml, us)
	p.generateCastlingMoves(ml, us)
}

func addStepMoves(ml *MoveList, from Square, targets, enemies Bitboard) {
	for targets != 0 {
		to := targets.PopLSB()
		if enemies&SquareBB(to) != 0 {
			ml.Add(NewCapture(from, to))
		} else {
			ml.Add(NewMove(from, to, FlagQuiet))
		}
	}
}

// generatePawnMoves generates all pawn moves.
func (p *Board) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromo := push1 & ^promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		from := Square(int(to) - pushDir)
		ml.Add(NewMove(from, to, FlagQuiet))
	}

	for push2 != 0 {
		to := push2.PopLSB()
		from := Square(int(to) - 2*pushDir)
		ml.Add(NewDoublePush(from, to))
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		ml.Add(NewCapture(from, to))
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		ml.Add(NewCapture(from, to))
	}

	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		from := Square(int(to) - pushDir)
		addPromotions(ml, from, to, false)
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		addPromotions(ml, from, to, true)
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		addPromotions(ml, from, to, true)
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewEnPassant(from, p.EnPassant))
		}
	}
}

// addPromotions adds all four promotion moves (capture or not).
func addPromotions(ml *MoveList, from, to Square, capture bool) {
	ml.Add(NewPromotion(from, to, Queen, capture))
	ml.Add(NewPromotion(from, to, Rook, capture))
	ml.Add(NewPromotion(from, to, Bishop, capture))
	ml.Add(NewPromotion(from, to, Knight, capture))
}

// generateKingMoves generates king moves (non-castling).
func (p *Board) generateKingMoves(ml *MoveList, us Color) {
	from := p.KingSquare[us]
	targets := KingAttacks(from) &^ p.Occupied[us]
	addStepMoves(ml, from, targets, p.Occupied[us.Other()])
}

// generateCastlingMoves generates castling moves.
func (p *Board) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 {
			if p.AllOccupied&((1<<F1)|(1<<G1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
					ml.Add(NewKingCastle(E1, G1))
				}
			}
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 {
			if p.AllOccupied&((1<<B1)|(1<<C1)|(1<<D1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
					ml.Add(NewQueenCastle(E1, C1))
				}
			}
		}
	} else {
		if p.CastlingRights&BlackKingSideCastle != 0 {
			if p.AllOccupied&((1<<F8)|(1<<G8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
					ml.Add(NewKingCastle(E8, G8))
				}
			}
		}
		if p.CastlingRights&BlackQueenSideCastle != 0 {
			if p.AllOccupied&((1<<B8)|(1<<C8)|(1<<D8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
					ml.Add(NewQueenCastle(E8, C8))
				}
			}
		}
	}
}

// generateCaptures generates capture (and capturing-promotion / promoting-push) moves only.
func (p *Board) generateCaptures(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied

	pawns := p.Pieces[us][Pawn]
	var attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		ml.Add(NewCapture(from, to))
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		ml.Add(NewCapture(from, to))
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		addPromotions(ml, from, to, true)
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		addPromotions(ml, from, to, true)
	}

	empty := ^occupied
	var push1 Bitboard
	if us == White {
		push1 = pawns.North() & empty & Rank8
	} else {
		push1 = pawns.South() & empty & Rank1
	}
	for push1 != 0 {
		to := push1.PopLSB()
		from := Square(int(to) - pushDir)
		addPromotions(ml, from, to, false)
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewEnPassant(from, p.EnPassant))
		}
	}

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}

	from := p.KingSquare[us]
	attacks := KingAttacks(from) & enemies
	for attacks != 0 {
		ml.Add(NewCapture(from, attacks.PopLSB()))
	}
}

// MakeMove applies a move to the position and returns undo information.
// The caller must have already proven the move legal (GenerateLegalMoves
// only ever emits legal moves); an unverified coordinate move — e.g. from a
// UCI "position ... moves" command — that leaves the mover's king attacked
// is still applied, and IsLegal can be used beforehand to reject it.
func (p *Board) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		Lock:           p.Lock,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)
	pt := piece.Type()

	xor := func(c Color, t PieceType, sq Square) {
		k, l := ZobristPiece(c, t, sq)
		p.Hash ^= k
		p.Lock ^= l
	}

	sk, sl := ZobristSide()
	p.Hash ^= sk
	p.Lock ^= sl

	ck, cl := ZobristCastling(p.CastlingRights)
	p.Hash ^= ck
	p.Lock ^= cl

	if p.EnPassant != NoSquare {
		ek, el := ZobristEnPassant(p.EnPassant.File())
		p.Hash ^= ek
		p.Lock ^= el
	}
	p.EnPassant = NoSquare

	if m.IsEnPassant() {
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		xor(them, Pawn, capturedSq)
	} else if captured := p.PieceAt(to); captured != NoPiece {
		undo.CapturedPiece = captured
		p.removePiece(to)
		xor(them, captured.Type(), to)
	}

	p.movePiece(from, to)
	xor(us, pt, from)
	xor(us, pt, to)

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		xor(us, Pawn, to)
		xor(us, promoPt, to)
	}

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookFrom, rookTo)
		xor(us, Rook, rookFrom)
		xor(us, Rook, rookTo)
	}

	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}
	if from == A1 || to == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}

	ck2, cl2 := ZobristCastling(p.CastlingRights)
	p.Hash ^= ck2
	p.Lock ^= cl2

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		ek, el := ZobristEnPassant(epSquare.File())
		p.Hash ^= ek
		p.Lock ^= el
	}

	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.GamePly++
	p.UpdateCheckers()

	return undo
}

// UnmakeMove undoes a move using the stored undo information.
func (p *Board) UnmakeMove(m Move, undo UndoInfo) {
	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.Lock = undo.Lock
	p.SideToMove = us
	p.GamePly--

	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][promoPt] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
	}

	p.movePiece(to, from)

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookTo, rookFrom)
	}

	if undo.CapturedPiece != NoPiece {
		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			p.setPiece(undo.CapturedPiece, capturedSq)
		} else {
			p.setPiece(undo.CapturedPiece, to)
		}
	}

	p.UpdateCheckers()
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Board) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsCheckmate returns true if the position is checkmate.
func (p *Board) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Board) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw (stalemate, 50-move, insufficient material).
func (p *Board) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Board) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}

	return false
}

// Perft counts the leaf nodes of the legal move tree to the given depth,
// used to verify move generation correctness against known node counts.
func (p *Board) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}

	ml := p.GenerateLegalMoves()

	if depth == 1 {
		return uint64(ml.Len())
	}

	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		undo := p.MakeMove(m)
		nodes += p.Perft(depth - 1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}
