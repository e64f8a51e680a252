package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"cenvorto/internal/auth"
	"cenvorto/internal/game"
	"cenvorto/internal/logger"
	"cenvorto/internal/reward"
)

// Error message constants
const (
	ErrorWordsNotArray   = "words must be array"
	ErrorMissingUser     = "Missing user address"
	ErrorMissingGuess    = "Missing user or guess"
	ErrorNoGameStarted   = "No game started for user"
	ErrorInvalidLength   = "Word must be 5 letters"
	ErrorUserRequired    = "User address required"
	ErrorNotVerified     = "Wallet not verified"
	ErrorCooldownActive  = "Cooldown active"
	ErrorNoVerifiedWin   = "No verified win to claim"
	ErrorMarkWinner      = "Failed to mark winner"
	ErrorLeaderboardRead = "Failed to fetch leaderboard"
	ErrorLeaderboardSave = "Failed to update leaderboard"
)

// verifiedOrAbort enforces the wallet-auth gate: game and reward routes only
// serve addresses that completed the signature handshake.
func (s *Server) verifiedOrAbort(c *gin.Context, address string) bool {
	if !s.handshake.Verified(address) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrorNotVerified})
		return false
	}
	return true
}

// wordsCreateHandler bulk-loads the secret word pool, best-effort.
func (s *Server) wordsCreateHandler(c *gin.Context) {
	var req struct {
		Words []string `json:"words"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Words == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorWordsNotArray})
		return
	}

	words := lo.Map(req.Words, func(w string, _ int) string {
		return strings.ToUpper(strings.TrimSpace(w))
	})

	if err := s.store.InsertWords(c.Request.Context(), words); err != nil {
		logger.Error("word pool load failed", zap.Error(err))
		s.internalError(c, err, "Failed to load words")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// randomWordHandler starts a round for the caller and returns only the sha256
// commitment of the selected secret.
func (s *Server) randomWordHandler(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorMissingUser})
		return
	}
	if !s.verifiedOrAbort(c, user) {
		return
	}

	hash, err := s.engine.StartRound(c.Request.Context(), user)
	if err != nil {
		logger.Error("round start failed", zap.String("user", user), zap.Error(err))
		s.internalError(c, err, "No word found")
		return
	}

	s.metrics.RoundsStarted.Inc()
	c.JSON(http.StatusOK, gin.H{"hash": hash})
}

// checkGuessHandler evaluates a guess against the caller's active round.
func (s *Server) checkGuessHandler(c *gin.Context) {
	var req struct {
		User  string `json:"user"`
		Guess string `json:"guess"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.User == "" || req.Guess == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorMissingGuess})
		return
	}
	if !s.verifiedOrAbort(c, req.User) {
		return
	}

	result, err := s.engine.Evaluate(req.User, req.Guess)
	switch {
	case errors.Is(err, game.ErrInvalidLength):
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorInvalidLength})
		return
	case errors.Is(err, game.ErrNoActiveRound):
		c.JSON(http.StatusNotFound, gin.H{"error": ErrorNoGameStarted})
		return
	case err != nil:
		s.internalError(c, err, "Failed to evaluate guess")
		return
	}

	s.metrics.Guesses.Inc()
	if result.Correct {
		s.metrics.Wins.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"correct": result.Correct, "status": result.Status})
}

// winnerHandler runs the cooldown-gated claim flow for a winning address.
func (s *Server) winnerHandler(c *gin.Context) {
	var req struct {
		User    string `json:"user"`
		ChainID uint64 `json:"chainId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.User == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorUserRequired})
		return
	}
	if !s.verifiedOrAbort(c, req.User) {
		return
	}

	txHash, err := s.bridge.MarkWinner(c.Request.Context(), req.ChainID, req.User)
	switch {
	case errors.Is(err, reward.ErrNoWin):
		s.metrics.WinnerTx.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": ErrorNoVerifiedWin})
		return
	case errors.Is(err, reward.ErrCooldownActive):
		s.metrics.WinnerTx.WithLabelValues("cooldown").Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": ErrorCooldownActive})
		return
	case err != nil:
		s.metrics.WinnerTx.WithLabelValues("error").Inc()
		logger.Error("winner marking failed", zap.String("user", req.User),
			zap.Uint64("chainId", req.ChainID), zap.Error(err))
		s.internalError(c, err, ErrorMarkWinner)
		return
	}

	s.metrics.WinnerTx.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "txHash": txHash})
}

// leaderboardGetHandler returns the top 100 addresses by wins.
func (s *Server) leaderboardGetHandler(c *gin.Context) {
	entries, err := s.store.TopPlayers(c.Request.Context(), 100)
	if err != nil {
		logger.Error("leaderboard query failed", zap.Error(err))
		s.internalError(c, err, ErrorLeaderboardRead)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}

// leaderboardPostHandler increments (or creates) an address's win counter.
func (s *Server) leaderboardPostHandler(c *gin.Context) {
	var req struct {
		User string `json:"user"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.User == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorUserRequired})
		return
	}

	if err := s.store.IncrementWins(c.Request.Context(), req.User); err != nil {
		logger.Error("leaderboard update failed", zap.String("user", req.User), zap.Error(err))
		s.internalError(c, err, ErrorLeaderboardSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// authNonceHandler issues the signable challenge for an address.
func (s *Server) authNonceHandler(c *gin.Context) {
	var req struct {
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorUserRequired})
		return
	}

	challenge, err := s.handshake.Challenge(req.Address)
	switch {
	case errors.Is(err, auth.ErrAlreadyVerified):
		c.JSON(http.StatusOK, gin.H{"success": true, "verified": true})
		return
	case errors.Is(err, auth.ErrHandshakePending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.internalError(c, err, "Failed to issue challenge")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     challenge.Message,
		"hashedNonce": challenge.HashedNonce,
	})
}

// authVerifyHandler completes the handshake with the wallet's signature.
func (s *Server) authVerifyHandler(c *gin.Context) {
	var req struct {
		Address   string `json:"address"`
		Signature string `json:"signature"`
		Rejected  bool   `json:"rejected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorUserRequired})
		return
	}

	// An explicit wallet-holder refusal is a user-initiated abort: tear the
	// session down rather than retry.
	if req.Rejected {
		s.handshake.Reject(req.Address)
		c.JSON(http.StatusOK, gin.H{"success": true, "verified": false})
		return
	}

	if req.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing signature"})
		return
	}

	session, err := s.handshake.Verify(req.Address, req.Signature)
	switch {
	case errors.Is(err, auth.ErrAlreadyVerified):
		c.JSON(http.StatusOK, gin.H{"success": true, "verified": true})
		return
	case errors.Is(err, auth.ErrNoChallenge):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, auth.ErrMalformedSignature), errors.Is(err, auth.ErrSignatureMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.internalError(c, err, "Verification failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"verified": true,
		"address":  session.Address,
		"token":    session.Token,
	})
}

// authDisconnectHandler clears all handshake state for an address, resetting
// the one-shot signing latch.
func (s *Server) authDisconnectHandler(c *gin.Context) {
	var req struct {
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorUserRequired})
		return
	}

	s.handshake.Disconnect(req.Address)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// healthzHandler returns a JSON health check with server stats.
func (s *Server) healthzHandler(c *gin.Context) {
	wordCount, err := s.store.CountWords(c.Request.Context())
	if err != nil {
		logger.Warn("health check word count failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"env":          s.cfg.Env,
		"words_loaded": wordCount,
		"uptime":       time.Since(s.startTime).Round(time.Second).String(),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// internalError hides upstream detail unless running in development.
func (s *Server) internalError(c *gin.Context, err error, message string) {
	if s.cfg.IsProduction() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": message, "detail": err.Error()})
}
