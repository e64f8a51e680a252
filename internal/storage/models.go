package storage

import "time"

// Word is one entry of the secret word pool. Values are stored uppercase and
// are unique; the pool is append-only.
type Word struct {
	Value string `gorm:"primaryKey"`
}

// WinnerLog is the append-only audit record of successful on-chain winner
// markings.
type WinnerLog struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	User      string    `gorm:"index;not null" json:"user"`
	TxHash    string    `gorm:"not null" json:"txHash"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

// LeaderboardEntry counts confirmed wins per address.
type LeaderboardEntry struct {
	User      string `gorm:"primaryKey" json:"user"`
	TotalWins int64  `gorm:"default:1" json:"totalWins"`
}
