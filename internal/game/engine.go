package game

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cenvorto/internal/logger"
)

// WordLength is the fixed length of every secret word and guess.
const WordLength = 5

// Guess status constants
const (
	GuessStatusCorrect = "correct"
	GuessStatusPresent = "present"
	GuessStatusAbsent  = "absent"
)

var (
	ErrNoActiveRound = errors.New("no active round for user")
	ErrInvalidLength = errors.New("word must be 5 letters")
)

// WordSource supplies random secret words. Satisfied by the storage layer.
type WordSource interface {
	RandomWord(ctx context.Context) (string, error)
}

// Result is the outcome of evaluating one guess.
type Result struct {
	Correct bool     `json:"correct"`
	Status  []string `json:"status"`
}

// Engine runs one word-guessing round per authenticated address. The secret
// never leaves the server; callers only ever see its sha256 commitment and
// per-guess verdicts.
type Engine struct {
	words  WordSource
	rounds *RoundStore
}

func NewEngine(words WordSource, rounds *RoundStore) *Engine {
	return &Engine{words: words, rounds: rounds}
}

// Rounds exposes the backing store, shared with the reward bridge.
func (e *Engine) Rounds() *RoundStore {
	return e.rounds
}

// StartRound selects a fresh secret for the address, replacing any prior
// round, and returns the hex sha256 commitment of the secret.
func (e *Engine) StartRound(ctx context.Context, address string) (string, error) {
	secret, err := e.words.RandomWord(ctx)
	if err != nil {
		return "", fmt.Errorf("selecting secret word: %w", err)
	}

	e.rounds.Put(address, secret)
	logger.Info("round started", zap.String("user", address))

	return hashWord(secret), nil
}

// Evaluate scores a guess against the address's active round. On a correct
// guess the round is flagged won; the flag is consumed later by the reward
// bridge.
func (e *Engine) Evaluate(address, guess string) (Result, error) {
	normalized := normalizeGuess(guess)
	if len(normalized) != WordLength {
		return Result{}, ErrInvalidLength
	}

	round, ok := e.rounds.Get(address)
	if !ok {
		return Result{}, ErrNoActiveRound
	}

	correct := normalized == round.Secret
	status := checkGuess(normalized, round.Secret)

	if correct {
		e.rounds.MarkWon(address)
		logger.Info("round won", zap.String("user", address))
	}

	return Result{Correct: correct, Status: status}, nil
}

// normalizeGuess trims and uppercases a guess string for comparison.
func normalizeGuess(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

// checkGuess compares a guess to the secret and returns per-letter verdicts.
// A position is "correct" on an exact match, "present" when the secret
// contains the letter anywhere, and "absent" otherwise. Repeated guess
// letters are not rationed against their count in the secret.
func checkGuess(guess, secret string) []string {
	status := make([]string, WordLength)
	for i := 0; i < WordLength; i++ {
		switch {
		case guess[i] == secret[i]:
			status[i] = GuessStatusCorrect
		case strings.ContainsRune(secret, rune(guess[i])):
			status[i] = GuessStatusPresent
		default:
			status[i] = GuessStatusAbsent
		}
	}
	return status
}

// hashWord returns the lowercase hex sha256 commitment of a word.
func hashWord(word string) string {
	sum := sha256.Sum256([]byte(word))
	return hex.EncodeToString(sum[:])
}
