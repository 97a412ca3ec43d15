package board

import "fmt"

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-15: flag (see Flag constants)
type Move uint16

// Flag classifies what a Move does beyond source/target.
type Flag uint16

const (
	FlagQuiet Flag = iota
	FlagDoublePush
	FlagKingCastle
	FlagQueenCastle
	FlagPromoN
	FlagPromoB
	FlagPromoR
	FlagPromoQ
	FlagCapture
	FlagPromoCapN
	FlagPromoCapB
	FlagPromoCapR
	FlagPromoCapQ
	FlagEnPassant
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

func pack(from, to Square, flag Flag) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<12
}

// NewMove creates a quiet or capture move (flag chosen by caller).
func NewMove(from, to Square, flag Flag) Move {
	return pack(from, to, flag)
}

// NewDoublePush creates a two-square pawn advance.
func NewDoublePush(from, to Square) Move {
	return pack(from, to, FlagDoublePush)
}

// NewCapture creates a non-promotion capture move.
func NewCapture(from, to Square) Move {
	return pack(from, to, FlagCapture)
}

// NewPromotion creates a promotion move, capture or not.
func NewPromotion(from, to Square, promo PieceType, capture bool) Move {
	var flag Flag
	switch promo {
	case Knight:
		flag = FlagPromoN
	case Bishop:
		flag = FlagPromoB
	case Rook:
		flag = FlagPromoR
	case Queen:
		flag = FlagPromoQ
	default:
		flag = FlagPromoQ
	}
	if capture {
		flag += FlagPromoCapN - FlagPromoN
	}
	return pack(from, to, flag)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return pack(from, to, FlagEnPassant)
}

// NewKingCastle creates a kingside castling move (king's movement only).
func NewKingCastle(from, to Square) Move {
	return pack(from, to, FlagKingCastle)
}

// NewQueenCastle creates a queenside castling move (king's movement only).
func NewQueenCastle(from, to Square) Move {
	return pack(from, to, FlagQueenCastle)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag returns the move flag.
func (m Move) Flag() Flag {
	return Flag((m >> 12) & 0xF)
}

// IsPromotion returns true if this is a promotion move (capture or not).
func (m Move) IsPromotion() bool {
	f := m.Flag()
	return (f >= FlagPromoN && f <= FlagPromoQ) || (f >= FlagPromoCapN && f <= FlagPromoCapQ)
}

// Promotion returns the promotion piece type (only valid if IsPromotion() is true).
func (m Move) Promotion() PieceType {
	switch m.Flag() {
	case FlagPromoN, FlagPromoCapN:
		return Knight
	case FlagPromoB, FlagPromoCapB:
		return Bishop
	case FlagPromoR, FlagPromoCapR:
		return Rook
	default:
		return Queen
	}
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	f := m.Flag()
	return f == FlagKingCastle || f == FlagQueenCastle
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsCapture returns true if this move captures a piece of any kind.
func (m Move) IsCapture() bool {
	f := m.Flag()
	return f == FlagCapture || f == FlagEnPassant || (f >= FlagPromoCapN && f <= FlagPromoCapQ)
}

// IsQuiet returns true if this move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()

	if m.IsPromotion() {
		promoChars := map[PieceType]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}
		s += string(promoChars[m.Promotion()])
	}

	return s
}

// ParseMove parses a UCI format move string against the legal moves of pos.
func ParseMove(s string, b *Board) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	var promo PieceType
	hasPromo := false
	if len(s) == 5 {
		hasPromo = true
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
	}

	ml := b.GenerateLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		mv := ml.Get(i)
		if mv.From() != from || mv.To() != to {
			continue
		}
		if hasPromo {
			if mv.IsPromotion() && mv.Promotion() == promo {
				return mv, nil
			}
			continue
		}
		if !mv.IsPromotion() {
			return mv, nil
		}
	}

	return NoMove, fmt.Errorf("illegal move: %s", s)
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo stores information needed to undo a move.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	Lock           uint64
}

// NullMoveUndo stores state for unmake of a null move.
type NullMoveUndo struct {
	EnPassant Square
	Hash      uint64
	Lock      uint64
}
