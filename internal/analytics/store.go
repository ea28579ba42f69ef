package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Store persists drained behavior profiles so they survive a restart.
type Store struct {
	db *sql.DB
}

// NewStore opens (and migrates) a sqlite-backed profile store at path.
// Use ":memory:" for an ephemeral store.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("analytics: open store: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS behavior_profiles (
			user_id             TEXT PRIMARY KEY,
			command_frequency   TEXT NOT NULL DEFAULT '{}',
			total_commands      INTEGER NOT NULL DEFAULT 0,
			successful_commands INTEGER NOT NULL DEFAULT 0,
			total_command_chars INTEGER NOT NULL DEFAULT 0,
			behavior_pattern    TEXT NOT NULL DEFAULT '',
			engagement_tier     TEXT NOT NULL DEFAULT '',
			first_seen          DATETIME NOT NULL,
			last_active         DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("analytics: migrate: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_behavior_profiles_last_active ON behavior_profiles(last_active)`)
	if err != nil {
		return fmt.Errorf("analytics: migrate index: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert writes profile, replacing any prior row for its user.
func (s *Store) Upsert(ctx context.Context, p *Profile) error {
	freq, err := json.Marshal(p.CommandFrequency)
	if err != nil {
		return fmt.Errorf("analytics: marshal command frequency: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO behavior_profiles (
			user_id, command_frequency, total_commands, successful_commands,
			total_command_chars, behavior_pattern, engagement_tier, first_seen, last_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			command_frequency = excluded.command_frequency,
			total_commands = excluded.total_commands,
			successful_commands = excluded.successful_commands,
			total_command_chars = excluded.total_command_chars,
			behavior_pattern = excluded.behavior_pattern,
			engagement_tier = excluded.engagement_tier,
			last_active = excluded.last_active
	`, p.UserID, string(freq), p.TotalCommands, p.SuccessfulCommands,
		p.TotalCommandChars, string(p.BehaviorPattern), string(p.EngagementTier),
		p.FirstSeen, p.LastActive)
	if err != nil {
		return fmt.Errorf("analytics: upsert profile: %w", err)
	}
	return nil
}

// Get loads the profile for userID, if one exists.
func (s *Store) Get(ctx context.Context, userID string) (*Profile, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, command_frequency, total_commands, successful_commands,
		       total_command_chars, behavior_pattern, engagement_tier, first_seen, last_active
		FROM behavior_profiles WHERE user_id = ?
	`, userID)

	var (
		freq       string
		pattern    string
		engagement string
		p          Profile
	)
	if err := row.Scan(&p.UserID, &freq, &p.TotalCommands, &p.SuccessfulCommands,
		&p.TotalCommandChars, &pattern, &engagement, &p.FirstSeen, &p.LastActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("analytics: get profile: %w", err)
	}
	p.BehaviorPattern = BehaviorPattern(pattern)
	p.EngagementTier = EngagementTier(engagement)
	p.CommandFrequency = map[model.Category]int{}
	if err := json.Unmarshal([]byte(freq), &p.CommandFrequency); err != nil {
		return nil, false, fmt.Errorf("analytics: decode command frequency: %w", err)
	}
	return &p, true, nil
}

// DeleteInactiveBefore removes every profile whose last_active precedes
// cutoff, returning how many rows were removed.
func (s *Store) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM behavior_profiles WHERE last_active < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("analytics: delete inactive profiles: %w", err)
	}
	return result.RowsAffected()
}
