package game

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

// Test constants
const (
	TestWordRiver = "RIVER"
	TestWordTiger = "TIGER"
	TestWordArena = "ARENA"
	TestWordEerie = "EERIE"
	TestWordHello = "HELLO"
	TestWordStone = "STONE"

	TestUserAbc = "0xABC"
	TestUserNew = "0xNEW"
)

// queueSource returns its words in order, one per StartRound.
type queueSource struct {
	words []string
	calls int
}

func (q *queueSource) RandomWord(_ context.Context) (string, error) {
	if q.calls >= len(q.words) {
		return "", errors.New("out of words")
	}
	w := q.words[q.calls]
	q.calls++
	return w, nil
}

func newTestEngine(words ...string) *Engine {
	return NewEngine(&queueSource{words: words}, NewRoundStore())
}

// TestCheckGuess pins the per-letter verdict rule: exact match, then
// contains-anywhere, then absent. Repeated letters are deliberately not
// rationed against their count in the secret.
func TestCheckGuess(t *testing.T) {
	tests := []struct {
		secret  string
		guess   string
		want    []string
		comment string
	}{
		{
			secret:  TestWordRiver,
			guess:   TestWordRiver,
			want:    []string{"correct", "correct", "correct", "correct", "correct"},
			comment: "exact match is all correct",
		},
		{
			secret:  TestWordRiver,
			guess:   TestWordTiger,
			want:    []string{"absent", "correct", "absent", "correct", "correct"},
			comment: "T and G never appear, I/E/R line up",
		},
		{
			secret:  TestWordArena,
			guess:   TestWordEerie,
			want:    []string{"present", "present", "present", "absent", "present"},
			comment: "every E reports present even though ARENA has one E",
		},
		{
			secret:  TestWordStone,
			guess:   "NOTES",
			want:    []string{"present", "present", "present", "present", "present"},
			comment: "full anagram with no positional hits",
		},
	}

	for _, tt := range tests {
		got := checkGuess(tt.guess, tt.secret)
		if len(got) != WordLength {
			t.Fatalf("%s: got %d verdicts, want %d", tt.comment, len(got), WordLength)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: guess %s vs %s, pos %d: got %q, want %q",
					tt.comment, tt.guess, tt.secret, i, got[i], tt.want[i])
			}
		}
	}
}

// TestStartRoundCommitment checks the returned hash commits to the secret the
// engine actually evaluates against.
func TestStartRoundCommitment(t *testing.T) {
	engine := newTestEngine(TestWordRiver)

	hash, err := engine.StartRound(context.Background(), TestUserAbc)
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}

	sum := sha256.Sum256([]byte(TestWordRiver))
	if want := hex.EncodeToString(sum[:]); hash != want {
		t.Errorf("commitment = %s, want %s", hash, want)
	}

	result, err := engine.Evaluate(TestUserAbc, TestWordRiver)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.Correct {
		t.Error("guessing the committed secret should be correct")
	}
}

// TestStartRoundReplaces checks a second StartRound fully replaces the first
// round rather than merging with it.
func TestStartRoundReplaces(t *testing.T) {
	engine := newTestEngine(TestWordRiver, TestWordStone)
	ctx := context.Background()

	if _, err := engine.StartRound(ctx, TestUserAbc); err != nil {
		t.Fatalf("first StartRound: %v", err)
	}
	if _, err := engine.StartRound(ctx, TestUserAbc); err != nil {
		t.Fatalf("second StartRound: %v", err)
	}

	first, err := engine.Evaluate(TestUserAbc, TestWordRiver)
	if err != nil {
		t.Fatalf("Evaluate old secret: %v", err)
	}
	if first.Correct {
		t.Error("old secret must not evaluate correct after replacement")
	}

	second, err := engine.Evaluate(TestUserAbc, TestWordStone)
	if err != nil {
		t.Fatalf("Evaluate new secret: %v", err)
	}
	if !second.Correct {
		t.Error("new secret must evaluate correct")
	}
}

// TestEvaluateWithoutRound checks the no-active-round failure mode.
func TestEvaluateWithoutRound(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.Evaluate(TestUserNew, TestWordHello)
	if !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("got %v, want ErrNoActiveRound", err)
	}
}

// TestEvaluateLength checks length validation happens before round lookup.
func TestEvaluateLength(t *testing.T) {
	engine := newTestEngine()

	for _, guess := range []string{"", "CAT", "STREAM"} {
		if _, err := engine.Evaluate(TestUserAbc, guess); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("guess %q: got %v, want ErrInvalidLength", guess, err)
		}
	}
}

// TestEvaluateNormalizes checks lowercase and padded guesses match.
func TestEvaluateNormalizes(t *testing.T) {
	engine := newTestEngine(TestWordRiver)
	if _, err := engine.StartRound(context.Background(), TestUserAbc); err != nil {
		t.Fatalf("StartRound: %v", err)
	}

	result, err := engine.Evaluate(TestUserAbc, "  river ")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.Correct {
		t.Error("lowercase padded guess should normalize to a correct match")
	}
}

// TestEvaluateSetsWinFlag checks a correct guess arms the claimable win.
func TestEvaluateSetsWinFlag(t *testing.T) {
	engine := newTestEngine(TestWordRiver)
	ctx := context.Background()

	if _, err := engine.StartRound(ctx, TestUserAbc); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if engine.Rounds().HasWin(TestUserAbc) {
		t.Fatal("win flag must not be set before a correct guess")
	}

	if _, err := engine.Evaluate(TestUserAbc, TestWordHello); err != nil {
		t.Fatalf("Evaluate wrong guess: %v", err)
	}
	if engine.Rounds().HasWin(TestUserAbc) {
		t.Fatal("wrong guess must not arm the win flag")
	}

	if _, err := engine.Evaluate(TestUserAbc, TestWordRiver); err != nil {
		t.Fatalf("Evaluate correct guess: %v", err)
	}
	if !engine.Rounds().HasWin(TestUserAbc) {
		t.Error("correct guess must arm the win flag")
	}
}
