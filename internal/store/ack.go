package store

import (
	"database/sql"
	"fmt"

	"github.com/rowanhealth/rowan/internal/model"
)

// AckStore persists which banners and modals an account has dismissed,
// keyed by notice id and trial day. Server-side state keeps dismissals
// consistent across devices.
type AckStore struct {
	db *sql.DB
}

func NewAckStore(db *sql.DB) *AckStore {
	return &AckStore{db: db}
}

// Acknowledge records a dismissal. Repeats are no-ops.
func (s *AckStore) Acknowledge(accountID int64, noticeID string, day int) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO acknowledgments (account_id, notice_id, day) VALUES (?, ?, ?)`,
		accountID, noticeID, day,
	)
	if err != nil {
		return fmt.Errorf("insert acknowledgment: %w", err)
	}
	return nil
}

// IsAcknowledged reports whether the notice was dismissed on the given
// day.
func (s *AckStore) IsAcknowledged(accountID int64, noticeID string, day int) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM acknowledgments WHERE account_id = ? AND notice_id = ? AND day = ?`,
		accountID, noticeID, day,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check acknowledgment: %w", err)
	}
	return n > 0, nil
}

// ListByAccountID returns all dismissals for an account.
func (s *AckStore) ListByAccountID(accountID int64) ([]*model.Acknowledgment, error) {
	rows, err := s.db.Query(
		`SELECT id, account_id, notice_id, day, acked_at FROM acknowledgments WHERE account_id = ? ORDER BY acked_at`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list acknowledgments: %w", err)
	}
	defer rows.Close()

	var out []*model.Acknowledgment
	for rows.Next() {
		var a model.Acknowledgment
		if err := rows.Scan(&a.ID, &a.AccountID, &a.NoticeID, &a.Day, &a.AckedAt); err != nil {
			return nil, fmt.Errorf("scan acknowledgment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
