package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"cenvorto/internal/logger"
)

type SqliteStorage struct {
	db *gorm.DB
}

func NewSqliteStorage(path string) (*SqliteStorage, error) {
	logger.Debug("initializing database...", zap.String("path", path))

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&Word{},
		&WinnerLog{},
		&LeaderboardEntry{},
	)
	if err != nil {
		return nil, err
	}

	return &SqliteStorage{db: db}, nil
}

// InsertWords bulk-loads words into the pool. Conflicts with existing words
// are skipped, so a partially duplicated load still succeeds.
func (s *SqliteStorage) InsertWords(ctx context.Context, words []string) error {
	logger.Debug("inserting words...", zap.Int("count", len(words)))

	if len(words) == 0 {
		return nil
	}

	docs := make([]*Word, 0, len(words))
	for _, w := range words {
		docs = append(docs, &Word{Value: w})
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "value"}},
		DoNothing: true,
	}).CreateInBatches(docs, 100).Error
	if err != nil {
		return err
	}

	logger.Debug("inserting words...done")
	return nil
}

func (s *SqliteStorage) CountWords(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Word{}).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RandomWord picks one word uniformly from the pool using a crypto/rand
// offset.
func (s *SqliteStorage) RandomWord(ctx context.Context) (string, error) {
	count, err := s.CountWords(ctx)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", ErrEmptyWordPool
	}

	n, err := rand.Int(rand.Reader, big.NewInt(count))
	if err != nil {
		logger.Warn("random offset generation failed, using first word", zap.Error(err))
		n = big.NewInt(0)
	}

	var word Word
	err = s.db.WithContext(ctx).Order("value").Offset(int(n.Int64())).Limit(1).Find(&word).Error
	if err != nil {
		return "", err
	}
	if word.Value == "" {
		return "", ErrEmptyWordPool
	}
	return word.Value, nil
}

func (s *SqliteStorage) AppendWinnerLog(ctx context.Context, entry *WinnerLog) error {
	logger.Debug("appending winner log entry...", zap.String("user", entry.User), zap.String("txHash", entry.TxHash))
	return s.db.WithContext(ctx).Create(entry).Error
}

// LastWinnerLog returns the most recent winner log entry for a user, or nil
// when the user has never been marked.
func (s *SqliteStorage) LastWinnerLog(ctx context.Context, user string) (*WinnerLog, error) {
	var entry WinnerLog
	err := s.db.WithContext(ctx).Where("user = ?", user).Order("timestamp desc").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// IncrementWins creates the leaderboard entry with one win, or bumps the
// counter when the address already has one.
func (s *SqliteStorage) IncrementWins(ctx context.Context, user string) error {
	logger.Debug("updating leaderboard...", zap.String("user", user))

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_wins": gorm.Expr("total_wins + 1"),
		}),
	}).Create(&LeaderboardEntry{User: user, TotalWins: 1}).Error
	if err != nil {
		return err
	}

	logger.Debug("updating leaderboard...done")
	return nil
}

func (s *SqliteStorage) TopPlayers(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	var entries []*LeaderboardEntry
	err := s.db.WithContext(ctx).Order("total_wins desc").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
