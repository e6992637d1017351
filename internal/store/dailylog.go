package store

import (
	"database/sql"
	"fmt"

	"github.com/rowanhealth/rowan/internal/model"
)

// ProgramLogDays is the length of the symptom-log program.
const ProgramLogDays = 5

type DailyLogStore struct {
	db *sql.DB
}

func NewDailyLogStore(db *sql.DB) *DailyLogStore {
	return &DailyLogStore{db: db}
}

func scanDailyLog(scanner interface{ Scan(...any) error }) (*model.DailyLog, error) {
	var l model.DailyLog
	err := scanner.Scan(
		&l.ID, &l.AccountID, &l.Day, &l.Energy, &l.Sleep, &l.Mood,
		&l.Symptoms, &l.Notes, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const dailyLogCols = `id, account_id, day, energy, sleep, mood, symptoms, notes, created_at`

// Upsert writes the log entry for (account, day), replacing any earlier
// submission for the same day.
func (s *DailyLogStore) Upsert(l *model.DailyLog) (*model.DailyLog, error) {
	_, err := s.db.Exec(
		`INSERT INTO daily_logs (account_id, day, energy, sleep, mood, symptoms, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(account_id, day) DO UPDATE SET
		   energy = excluded.energy, sleep = excluded.sleep, mood = excluded.mood,
		   symptoms = excluded.symptoms, notes = excluded.notes`,
		l.AccountID, l.Day, l.Energy, l.Sleep, l.Mood, l.Symptoms, l.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert daily log: %w", err)
	}
	row := s.db.QueryRow(
		`SELECT `+dailyLogCols+` FROM daily_logs WHERE account_id = ? AND day = ?`,
		l.AccountID, l.Day,
	)
	return scanDailyLog(row)
}

func (s *DailyLogStore) ListByAccountID(accountID int64) ([]*model.DailyLog, error) {
	rows, err := s.db.Query(
		`SELECT `+dailyLogCols+` FROM daily_logs WHERE account_id = ? ORDER BY day`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	defer rows.Close()

	var out []*model.DailyLog
	for rows.Next() {
		l, err := scanDailyLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *DailyLogStore) CountByAccountID(accountID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM daily_logs WHERE account_id = ?`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count daily logs: %w", err)
	}
	return n, nil
}
