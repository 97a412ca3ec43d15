package board

import "testing"

// checkBitboardConsistency verifies that PieceAt agrees with the per-color,
// per-type bitboards at every occupied square, and that no two piece
// bitboards overlap.
func checkBitboardConsistency(t *testing.T, p *Board) {
	t.Helper()

	for sq := Square(0); sq < 64; sq++ {
		bb := SquareBB(sq)
		occupants := 0
		for c := White; c <= Black; c++ {
			for pt := Pawn; pt <= King; pt++ {
				if p.Pieces[c][pt]&bb != 0 {
					occupants++
				}
			}
		}
		if occupants > 1 {
			t.Fatalf("square %s claimed by %d piece bitboards", sq, occupants)
		}

		piece := p.PieceAt(sq)
		hasAny := p.AllOccupied&bb != 0
		if (piece != NoPiece) != hasAny {
			t.Fatalf("square %s: PieceAt=%v but AllOccupied bit=%v", sq, piece, hasAny)
		}
		if piece != NoPiece && p.Pieces[piece.Color()][piece.Type()]&bb == 0 {
			t.Fatalf("square %s: PieceAt=%v not reflected in its own bitboard", sq, piece)
		}
	}
}

func TestBitboardConsistencyStartpos(t *testing.T) {
	checkBitboardConsistency(t, NewBoard())
}

func TestBitboardConsistencyKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("FEN parse failed: %v", err)
	}
	checkBitboardConsistency(t, pos)
}

// TestIncrementalHashMatchesRecompute walks a handful of moves from the
// starting position and checks the incrementally maintained (Hash, Lock)
// pair against a from-scratch recomputation after every make and undo.
func TestIncrementalHashMatchesRecompute(t *testing.T) {
	pos := NewBoard()

	verify := func(label string) {
		t.Helper()
		if got, want := pos.Hash, pos.ComputeHash(); got != want {
			t.Fatalf("%s: incremental hash %016x != recomputed %016x", label, got, want)
		}
		if got, want := pos.Lock, pos.ComputeLock(); got != want {
			t.Fatalf("%s: incremental lock %016x != recomputed %016x", label, got, want)
		}
	}

	verify("startpos")

	var undos []UndoInfo
	var moves []Move
	for i := 0; i < 6; i++ {
		legal := pos.GenerateLegalMoves()
		if legal.Len() == 0 {
			break
		}
		m := legal.Get(i % legal.Len())
		undo := pos.MakeMove(m)
		pos.UpdateCheckers()
		verify("after move")
		moves = append(moves, m)
		undos = append(undos, undo)
	}

	for i := len(moves) - 1; i >= 0; i-- {
		pos.UnmakeMove(moves[i], undos[i])
		pos.UpdateCheckers()
		verify("after undo")
	}

	checkBitboardConsistency(t, pos)
}

// TestMakeUndoIsIdentity checks that make(m); undo(m) restores every
// observable field of the position, not just the hash.
func TestMakeUndoIsIdentity(t *testing.T) {
	positions := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	for _, fen := range positions {
		before, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("FEN parse failed for %s: %v", fen, err)
		}

		pos := before.Copy()
		legal := pos.GenerateLegalMoves()
		for i := 0; i < legal.Len(); i++ {
			m := legal.Get(i)
			undo := pos.MakeMove(m)
			pos.UnmakeMove(m, undo)

			if pos.Hash != before.Hash || pos.Lock != before.Lock {
				t.Fatalf("%s: make/undo %s changed hash/lock", fen, m)
			}
			if pos.CastlingRights != before.CastlingRights {
				t.Fatalf("%s: make/undo %s changed castling rights", fen, m)
			}
			if pos.EnPassant != before.EnPassant {
				t.Fatalf("%s: make/undo %s changed en passant square", fen, m)
			}
			if pos.HalfMoveClock != before.HalfMoveClock {
				t.Fatalf("%s: make/undo %s changed half-move clock", fen, m)
			}
			if pos.AllOccupied != before.AllOccupied || pos.Occupied != before.Occupied {
				t.Fatalf("%s: make/undo %s changed occupancy", fen, m)
			}
		}
	}
}

// TestFENRoundTrip checks that parsing and re-serializing a FEN reproduces
// the same FEN (field-for-field; ToFEN always emits the halfmove and
// fullmove counters, so every input here carries them).
func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("FEN parse failed for %s: %v", fen, err)
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("FEN round-trip mismatch:\n  in:  %s\n  out: %s", fen, got)
		}
	}
}

// TestMoveEncodeDecodeRoundTrip checks decode(encode(m)) == m for quiet
// moves, double pushes, captures, en passant, both castles, and a sample of
// quiet and capturing promotions.
func TestMoveEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Move{
		NewMove(E2, E4, FlagQuiet),
		NewDoublePush(E2, E4),
		NewCapture(D4, E5),
		NewEnPassant(E5, D6),
		NewKingCastle(E1, G1),
		NewQueenCastle(E1, C1),
		NewPromotion(A7, A8, Queen, false),
		NewPromotion(A7, A8, Knight, false),
		NewPromotion(B7, A8, Rook, true),
		NewPromotion(B7, A8, Bishop, true),
	}

	for _, m := range cases {
		from, to, flag := m.From(), m.To(), m.Flag()
		decoded := pack(from, to, flag)
		if decoded != m {
			t.Errorf("encode/decode mismatch for %s: got flag %d, want %d", m, decoded.Flag(), flag)
		}
	}
}

// TestEnPassantOnlyImmediatelyAfterDoublePush verifies that an en passant
// target square set by a double push is cleared (and thus unavailable) as
// soon as any other move is made.
func TestEnPassantOnlyImmediatelyAfterDoublePush(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3")
	if err != nil {
		t.Fatalf("FEN parse failed: %v", err)
	}

	found := false
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		if legal.Get(i).IsEnPassant() {
			found = true
		}
	}
	if !found {
		t.Fatal("expected d4xe3 en passant to be legal immediately after the double push")
	}

	// Play a quiet move instead and confirm the en passant square is gone.
	var quiet Move
	for i := 0; i < legal.Len(); i++ {
		if m := legal.Get(i); !m.IsEnPassant() && !m.IsCapture() {
			quiet = m
			break
		}
	}
	pos.MakeMove(quiet)
	if pos.EnPassant != NoSquare {
		t.Fatalf("en passant square should be cleared after an unrelated move, got %s", pos.EnPassant)
	}
}

// TestCastlingThroughCheckRejected verifies castling is illegal when the
// king would pass through, start in, or land in check.
func TestCastlingThroughCheckRejected(t *testing.T) {
	// A black rook attacks e1 (start), f1 (pass through) or g1 (land).
	cases := []struct {
		fen, why string
	}{
		{"4rk2/8/8/8/8/8/8/4K2R w K - 0 1", "king starts in check on the e-file"},
		{"5rk1/8/8/8/8/8/8/4K2R w K - 0 1", "king passes through f1, attacked on the f-file"},
		{"k5r1/8/8/8/8/8/8/4K2R w K - 0 1", "king lands on g1, attacked on the g-file"},
	}

	for _, tc := range cases {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("FEN parse failed: %v", err)
		}
		pos.UpdateCheckers()

		legal := pos.GenerateLegalMoves()
		for i := 0; i < legal.Len(); i++ {
			if legal.Get(i).IsCastling() {
				t.Fatalf("kingside castle should be illegal: %s", tc.why)
			}
		}
	}
}

// TestPromotionFlagOnlyOnBackRank verifies every generated promotion move
// targets rank 8 (white) or rank 1 (black).
func TestPromotionFlagOnlyOnBackRank(t *testing.T) {
	pos, err := ParseFEN("8/P6k/8/8/8/8/p6K/8 w - - 0 1")
	if err != nil {
		t.Fatalf("FEN parse failed: %v", err)
	}

	legal := pos.GenerateLegalMoves()
	sawPromotion := false
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.IsPromotion() {
			sawPromotion = true
			if m.To().Rank() != 7 {
				t.Errorf("white promotion move %s targets rank %d, want rank 8", m, m.To().Rank()+1)
			}
		}
	}
	if !sawPromotion {
		t.Fatal("expected at least one promotion move for the white a7 pawn")
	}
}
