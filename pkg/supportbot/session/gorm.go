package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type sessionRow struct {
	ID        string `gorm:"primaryKey;size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sessionRow) TableName() string { return "chat_sessions" }

type turnRow struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"index;size:255;not null"`
	Role      string `gorm:"size:16;not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (turnRow) TableName() string { return "chat_turns" }

// GormStore persists histories in SQL tables. Turn order is the
// autoincrement id of chat_turns.
type GormStore struct {
	db    *gorm.DB
	locks *KeyLock
}

var (
	_ Store  = &GormStore{}
	_ Lister = &GormStore{}
)

// NewGormStore migrates the schema on db and returns a store backed by it.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&sessionRow{}, &turnRow{}); err != nil {
		return nil, unavailable("failed to migrate session schema", err)
	}
	return &GormStore{db: db, locks: NewKeyLock()}, nil
}

// OpenSQLite opens (creating if needed) a SQLite database at path.
func OpenSQLite(path string) (*GormStore, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, unavailable("failed to create database directory", err)
			}
		}
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, unavailable("failed to open sqlite database", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, unavailable("failed to access sqlite handle", err)
	}
	// SQLite allows one writer; a single connection keeps transactions from colliding.
	sqlDB.SetMaxOpenConns(1)
	return NewGormStore(db)
}

// OpenPostgres connects to the database named by dsn.
func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, unavailable("failed to connect to postgres", err)
	}
	return NewGormStore(db)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
}

func (s *GormStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	turn, err := prepareTurn(sessionID, turn)
	if err != nil {
		return err
	}
	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return unavailable("append cancelled", err)
	}
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := sessionRow{ID: sessionID, CreatedAt: turn.CreatedAt, UpdatedAt: turn.CreatedAt}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{"updated_at": turn.CreatedAt}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Create(&turnRow{
			SessionID: sessionID,
			Role:      string(turn.Role),
			Content:   turn.Content,
			CreatedAt: turn.CreatedAt,
		}).Error
	})
	if err != nil {
		return unavailable("failed to append turn", err)
	}
	return nil
}

func (s *GormStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	if err := validateID(sessionID); err != nil {
		return nil, err
	}
	var rows []turnRow
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, unavailable("failed to read history", err)
	}
	out := make([]Turn, 0, len(rows))
	for _, r := range rows {
		out = append(out, Turn{Role: Role(r.Role), Content: r.Content, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *GormStore) Clear(ctx context.Context, sessionID string) error {
	if err := validateID(sessionID); err != nil {
		return err
	}
	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return unavailable("clear cancelled", err)
	}
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&turnRow{}).Error; err != nil {
			return err
		}
		return tx.Model(&sessionRow{}).
			Where("id = ?", sessionID).
			Update("updated_at", time.Now().UTC()).Error
	})
	if err != nil {
		return unavailable("failed to clear history", err)
	}
	return nil
}

func (s *GormStore) Sessions(ctx context.Context) ([]Summary, error) {
	var rows []sessionRow
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, unavailable("failed to list sessions", err)
	}
	var counts []struct {
		SessionID string
		N         int
	}
	if err := s.db.WithContext(ctx).
		Model(&turnRow{}).
		Select("session_id, count(*) AS n").
		Group("session_id").
		Scan(&counts).Error; err != nil {
		return nil, unavailable("failed to count turns", err)
	}
	byID := make(map[string]int, len(counts))
	for _, c := range counts {
		byID[c.SessionID] = c.N
	}

	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, Summary{ID: r.ID, Turns: byID[r.ID], UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
