package reward

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"cenvorto/internal/chain"
	"cenvorto/internal/game"
	"cenvorto/internal/logger"
	"cenvorto/internal/storage"
)

var (
	// ErrNoWin means the caller asserted a win the round engine never saw.
	ErrNoWin = errors.New("no verified win to claim")
	// ErrCooldownActive means the contract says the address claimed too
	// recently. Reported distinctly so clients can render a countdown.
	ErrCooldownActive = errors.New("cooldown active")
)

// Bridge converts a server-verified win into exactly one on-chain winner
// marking per cooldown window. The contract's eligibleToClaim is the single
// cooldown source of truth; the winner log is audit only.
type Bridge struct {
	chain  chain.Client
	store  storage.Storage
	rounds *game.RoundStore

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

func NewBridge(client chain.Client, store storage.Storage, rounds *game.RoundStore) *Bridge {
	return &Bridge{
		chain:    client,
		store:    store,
		rounds:   rounds,
		inflight: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the per-address mutex serializing claim attempts.
func (b *Bridge) lockFor(user string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(user)
	if lock, ok := b.inflight[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	b.inflight[key] = lock
	return lock
}

// CheckEligibility reports whether the address may claim now.
func (b *Bridge) CheckEligibility(ctx context.Context, chainID uint64, user string) (bool, error) {
	return b.chain.EligibleToClaim(ctx, chainID, user)
}

// MarkWinner performs the claim flow for one address:
//
//  1. the chain table must know the chain ID — unknown chains fail before any
//     network I/O,
//  2. the contract must report the address eligible (checked before the win
//     flag, so a second claim inside the window reads as cooldown rather
//     than a missing win),
//  3. the round engine must have recorded the win (the flag is peeked here
//     and consumed only after the transaction confirms, so transient
//     failures keep the claim retryable),
//  4. markAsWinner is submitted and awaited with a bounded timeout.
//
// Only after on-chain success are the winner log appended and the leaderboard
// incremented. Claims for one address are serialized; concurrent attempts
// within one cooldown window yield one success and one ErrCooldownActive.
func (b *Bridge) MarkWinner(ctx context.Context, chainID uint64, user string) (string, error) {
	lock := b.lockFor(user)
	lock.Lock()
	defer lock.Unlock()

	eligible, err := b.chain.EligibleToClaim(ctx, chainID, user)
	if err != nil {
		return "", fmt.Errorf("checking eligibility: %w", err)
	}
	if !eligible {
		return "", ErrCooldownActive
	}

	if !b.rounds.HasWin(user) {
		return "", ErrNoWin
	}

	txHash, err := b.chain.MarkAsWinner(ctx, chainID, user)
	if err != nil {
		return "", fmt.Errorf("marking winner on chain %d: %w", chainID, err)
	}

	b.rounds.ConsumeWin(user)

	entry := &storage.WinnerLog{User: user, TxHash: txHash, Timestamp: time.Now()}
	if err := b.store.AppendWinnerLog(ctx, entry); err != nil {
		logger.Error("winner confirmed on chain but log append failed",
			zap.String("user", user), zap.String("txHash", txHash), zap.Error(err))
	}
	if err := b.store.IncrementWins(ctx, user); err != nil {
		logger.Error("winner confirmed on chain but leaderboard update failed",
			zap.String("user", user), zap.Error(err))
	}

	logger.Info("winner marked", zap.String("user", user),
		zap.Uint64("chainId", chainID), zap.String("txHash", txHash))
	return txHash, nil
}
