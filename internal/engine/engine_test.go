package engine

import (
	"testing"
	"time"

	"github.com/hailam/chessengine/internal/board"
)

func TestSearchBasic(t *testing.T) {
	pos := board.NewBoard()
	eng := NewEngine(DefaultEngineOptions(), nil)

	move := eng.SearchWithLimits(pos, SearchLimits{Depth: 4})
	if move == board.NoMove {
		t.Error("search returned NoMove for starting position")
	}
	t.Logf("best move: %s", move.String())
}

func TestSearchFindsMateInOne(t *testing.T) {
	// Black to move, mate in one with Qh4# (after 1.f3 e5 2.g4).
	pos, err := board.ParseFEN("rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2")
	if err != nil {
		t.Fatalf("FEN parse failed: %v", err)
	}
	eng := NewEngine(DefaultEngineOptions(), nil)

	move := eng.SearchWithLimits(pos, SearchLimits{Depth: 3})
	if move.From() != board.D8 || move.To() != board.H4 {
		t.Errorf("expected Qd8-h4#, got %s", move.String())
	}
}

func TestConcurrentSearchRace(t *testing.T) {
	pos := board.NewBoard()
	opts := DefaultEngineOptions()
	opts.Threads = 4
	eng := NewEngine(opts, nil)

	iterations := 5
	if testing.Short() {
		iterations = 2
	}

	for i := 0; i < iterations; i++ {
		move := eng.SearchWithLimits(pos, SearchLimits{Depth: 5, MoveTime: 300 * time.Millisecond})
		if move == board.NoMove {
			t.Errorf("iteration %d: search returned NoMove", i)
		}

		if i%2 == 0 {
			pos, _ = board.ParseFEN("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2")
		} else {
			pos, _ = board.ParseFEN("rnbqkbnr/ppp1pppp/8/3p4/3P4/8/PPP1PPPP/RNBQKBNR w KQkq d6 0 2")
		}
	}
}

func TestConcurrentSearchMultiplePositions(t *testing.T) {
	eng := NewEngine(DefaultEngineOptions(), nil)

	positions := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
		"8/8/8/4k3/8/4K3/4P3/8 w - - 0 1",
	}

	for i, fen := range positions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("failed to parse position %d: %v", i, err)
		}

		move := eng.SearchWithLimits(pos, SearchLimits{Depth: 5, MoveTime: 300 * time.Millisecond})
		if move == board.NoMove && pos.GenerateLegalMoves().Len() > 0 {
			t.Errorf("board %d: search returned NoMove despite legal moves", i)
		}
	}
}

func TestMateInOneRookLadder(t *testing.T) {
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("FEN parse failed: %v", err)
	}
	eng := NewEngine(DefaultEngineOptions(), nil)

	move := eng.SearchWithLimits(pos, SearchLimits{Depth: 3})
	if move.From() != board.A1 || move.To() != board.A8 {
		t.Errorf("expected Ra1-a8#, got %s", move.String())
	}
}

// TestStalemateIsScoredAsDraw checks that a side with no legal moves and no
// checkers is scored 0, not as a loss.
func TestStalemateIsScoredAsDraw(t *testing.T) {
	pos, err := board.ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("FEN parse failed: %v", err)
	}

	if pos.GenerateLegalMoves().Len() == 0 {
		if pos.InCheck() {
			t.Fatal("test position is checkmate, not stalemate")
		}
		s := NewSearcher(NewTranspositionTable(1), nil)
		_, score := s.Search(pos, 2)
		if score != 0 {
			t.Errorf("expected stalemate score 0, got %d", score)
		}
	}
}

// TestNullMoveSoundnessZugzwang checks that null-move pruning (disabled in
// pawn-only endgames via HasNonPawnMaterial) does not report a confident
// loss in a zugzwang-prone king-and-pawn position that is actually holdable.
func TestNullMoveSoundnessZugzwang(t *testing.T) {
	pos, err := board.ParseFEN("8/k7/3p4/p2P1p2/P2P1P2/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("FEN parse failed: %v", err)
	}
	eng := NewEngine(DefaultEngineOptions(), nil)
	var lastScore int
	eng.OnInfo = func(info SearchInfo) { lastScore = info.Score }

	move := eng.SearchWithLimits(pos, SearchLimits{Depth: 8})
	if move == board.NoMove {
		t.Fatal("search returned NoMove in a position with legal moves")
	}
	// A sound search should not misjudge this holdable position as a clear
	// loss for White; a null-move pruning bug in a zugzwang position is
	// exactly the failure mode that would report a large negative score.
	const lossThreshold = -300
	if lastScore < lossThreshold {
		t.Errorf("search reports a likely loss (score %d) in a position that should hold", lastScore)
	}
}

func TestEngineSetOption(t *testing.T) {
	eng := NewEngine(DefaultEngineOptions(), nil)
	eng.SetOption("Threads", 2)
	if eng.opts.Threads != 2 {
		t.Errorf("expected Threads=2, got %d", eng.opts.Threads)
	}
	eng.SetOption("Hash", 32)
	if eng.opts.HashMB != 32 {
		t.Errorf("expected HashMB=32, got %d", eng.opts.HashMB)
	}
}
