package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
)

const maxRetries = 3

// SQLiteRepository implements ports.SessionHistory using GORM
type SQLiteRepository struct {
	db *gorm.DB
}

// Verify interface compliance at compile time
var _ ports.SessionHistory = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (or creates) the history database at dbPath
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets the serve process and local CLI runs share the file
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")
	db.Exec("PRAGMA foreign_keys=ON")

	if err := db.AutoMigrate(&SessionModel{}, &ProcessRunModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordSpawn upserts the session and appends a process run
func (r *SQLiteRepository) RecordSpawn(ctx context.Context, record ports.SessionRecord, run ports.ProcessRun) error {
	return withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			model := recordToSessionModel(record)
			// Keep the agent token learned from an earlier run unless a new one is given
			updates := []string{"agent_id", "model_id", "read_only", "working_dir", "updated_at"}
			if model.AgentSessionID != "" {
				updates = append(updates, "agent_session_id")
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(updates),
			}).Create(&model).Error; err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			runModel := runToModel(run)
			if err := tx.Create(&runModel).Error; err != nil {
				return fmt.Errorf("failed to save process run: %w", err)
			}
			return nil
		})
	}, maxRetries)
}

// RecordExit closes the open run of the given process
func (r *SQLiteRepository) RecordExit(ctx context.Context, key domain.ProcessKey, pid int, status domain.ExitStatus, at time.Time) error {
	return withRetry(func() error {
		code := status.Code
		return r.db.WithContext(ctx).Model(&ProcessRunModel{}).
			Where("session_id = ? AND role = ? AND pid = ? AND exited_at IS NULL", key.SessionID, string(key.Role), pid).
			Updates(map[string]any{
				"exit_code": &code,
				"exited_at": at.UTC(),
				"signal":    status.Signal,
			}).Error
	}, maxRetries)
}

// UpdateAgentSessionID stores the resumable token assigned by the agent
func (r *SQLiteRepository) UpdateAgentSessionID(ctx context.Context, sessionID, agentSessionID string) error {
	return withRetry(func() error {
		result := r.db.WithContext(ctx).Model(&SessionModel{}).
			Where("id = ?", sessionID).
			Update("agent_session_id", agentSessionID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ports.ErrSessionNotFound, sessionID)
		}
		return nil
	}, maxRetries)
}

// GetSession returns one session by id
func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (*ports.SessionRecord, error) {
	var model SessionModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	}, maxRetries)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ports.ErrSessionNotFound, id)
		}
		return nil, err
	}

	record := sessionModelToRecord(model)
	return &record, nil
}

// ListSessions returns sessions, most recently used first
func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]ports.SessionRecord, error) {
	var models []SessionModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Order("updated_at DESC").Find(&models).Error
	}, maxRetries)
	if err != nil {
		return nil, err
	}

	records := make([]ports.SessionRecord, 0, len(models))
	for _, m := range models {
		records = append(records, sessionModelToRecord(m))
	}
	return records, nil
}

// ListRuns returns the process runs of a session in start order
func (r *SQLiteRepository) ListRuns(ctx context.Context, sessionID string) ([]ports.ProcessRun, error) {
	var models []ProcessRunModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("started_at ASC, id ASC").Find(&models).Error
	}, maxRetries)
	if err != nil {
		return nil, err
	}

	runs := make([]ports.ProcessRun, 0, len(models))
	for _, m := range models {
		runs = append(runs, runModelToDomain(m))
	}
	return runs, nil
}

// withRetry retries operations on SQLITE_BUSY with linear backoff
func withRetry(fn func() error, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries", maxRetries)
}
