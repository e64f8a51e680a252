package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cenvorto/internal/logger"
)

// State tracks where one address is in the signature handshake.
type State int

const (
	StateDisconnected State = iota
	StateAwaitingSignature
	StateVerifying
	StateVerified
	StateRejected
)

var (
	ErrHandshakePending = errors.New("signature request already outstanding")
	ErrAlreadyVerified  = errors.New("address already verified")
	ErrNoChallenge      = errors.New("no outstanding challenge for address")
)

// Challenge is the signable payload issued to a connecting wallet.
type Challenge struct {
	Address     string `json:"address"`
	HashedNonce string `json:"hashedNonce"`
	Message     string `json:"message"`
}

// Session is a verified address binding. The token identifies the session on
// subsequent calls; it is never re-validated against the wallet.
type Session struct {
	Address   string    `json:"address"`
	Token     string    `json:"token"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"-"`
}

// Handshake binds anonymous callers to wallet addresses through a
// challenge-response signature. One challenge may be outstanding per address
// at a time; the latch resets on disconnect so a reconnecting wallet can sign
// fresh.
type Handshake struct {
	mu         sync.Mutex
	states     map[string]State
	challenges map[string]string
	sessions   map[string]*Session
}

func NewHandshake() *Handshake {
	return &Handshake{
		states:     make(map[string]State),
		challenges: make(map[string]string),
		sessions:   make(map[string]*Session),
	}
}

// Challenge issues a fresh nonce commitment and signable message for an
// address. A second call while a sign/verify cycle is outstanding fails with
// ErrHandshakePending; an already-verified address gets ErrAlreadyVerified so
// the caller can skip re-signing.
func (h *Handshake) Challenge(address string) (Challenge, error) {
	key := normalizeAddress(address)

	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.states[key] {
	case StateVerified:
		return Challenge{}, ErrAlreadyVerified
	case StateAwaitingSignature, StateVerifying:
		return Challenge{}, ErrHandshakePending
	}

	hashedNonce := hashNonce(newNonce())
	message := fmt.Sprintf("I confirm that my address is %s with nonce %s", address, hashedNonce)

	h.states[key] = StateAwaitingSignature
	h.challenges[key] = message

	logger.Debug("challenge issued", zap.String("address", address))
	return Challenge{Address: address, HashedNonce: hashedNonce, Message: message}, nil
}

// Verify checks that the signature recovers to the claimed address for the
// exact challenge bytes. On success the session becomes Verified and a token
// is issued. A mismatch leaves the challenge outstanding so the caller may
// surface the error without losing the handshake.
func (h *Handshake) Verify(address, signature string) (Session, error) {
	key := normalizeAddress(address)

	h.mu.Lock()
	if h.states[key] != StateAwaitingSignature {
		state := h.states[key]
		h.mu.Unlock()
		if state == StateVerified {
			return Session{}, ErrAlreadyVerified
		}
		return Session{}, ErrNoChallenge
	}
	message := h.challenges[key]
	h.states[key] = StateVerifying
	h.mu.Unlock()

	err := VerifySignature(address, message, signature)

	h.mu.Lock()
	defer h.mu.Unlock()

	if err != nil {
		h.states[key] = StateAwaitingSignature
		logger.Warn("signature verification failed", zap.String("address", address), zap.Error(err))
		return Session{}, err
	}

	session := &Session{
		Address:   address,
		Token:     uuid.NewString(),
		Verified:  true,
		CreatedAt: time.Now(),
	}
	h.states[key] = StateVerified
	h.sessions[key] = session
	delete(h.challenges, key)

	logger.Info("wallet verified", zap.String("address", address))
	return *session, nil
}

// Reject handles an explicit signature refusal by the wallet holder: the
// handshake is torn down entirely, matching a user-initiated abort.
func (h *Handshake) Reject(address string) {
	key := normalizeAddress(address)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.states[key] = StateRejected
	delete(h.challenges, key)
	delete(h.sessions, key)

	logger.Info("signature rejected, session cleared", zap.String("address", address))
}

// Disconnect clears all handshake state for an address, resetting the
// one-shot latch so a reconnect can start over.
func (h *Handshake) Disconnect(address string) {
	key := normalizeAddress(address)

	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.states, key)
	delete(h.challenges, key)
	delete(h.sessions, key)

	logger.Debug("wallet disconnected", zap.String("address", address))
}

// Verified reports whether the address holds a verified session.
func (h *Handshake) Verified(address string) bool {
	key := normalizeAddress(address)

	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[key]
	return ok && session.Verified
}

// Session returns the verified session for an address, if any.
func (h *Handshake) Session(address string) (Session, bool) {
	key := normalizeAddress(address)

	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[key]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// StateOf returns the handshake state for an address.
func (h *Handshake) StateOf(address string) State {
	key := normalizeAddress(address)

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.states[key]
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// newNonce returns a random numeric nonce. Only its hash ever leaves the
// process.
func newNonce() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		logger.Warn("nonce generation fell back to timestamp", zap.Error(err))
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return n.String()
}

func hashNonce(nonce string) string {
	sum := sha256.Sum256([]byte(nonce))
	return base64.StdEncoding.EncodeToString(sum[:])
}
