package store

import (
	"database/sql"
	"fmt"

	"github.com/rowanhealth/rowan/internal/model"
)

type QuizStore struct {
	db *sql.DB
}

func NewQuizStore(db *sql.DB) *QuizStore {
	return &QuizStore{db: db}
}

func scanQuizResult(scanner interface{ Scan(...any) error }) (*model.QuizResult, error) {
	var q model.QuizResult
	var accountID sql.NullInt64
	err := scanner.Scan(&q.ID, &accountID, &q.Email, &q.Answers, &q.Score, &q.Segment, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	if accountID.Valid {
		q.AccountID = &accountID.Int64
	}
	return &q, nil
}

const quizCols = `id, account_id, email, answers, score, segment, created_at`

func (s *QuizStore) Create(email, answers string, score int, segment string) (*model.QuizResult, error) {
	result, err := s.db.Exec(
		`INSERT INTO quiz_results (email, answers, score, segment) VALUES (?, ?, ?, ?)`,
		email, answers, score, segment,
	)
	if err != nil {
		return nil, fmt.Errorf("insert quiz result: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+quizCols+` FROM quiz_results WHERE id = ?`, id)
	return scanQuizResult(row)
}

// GetLatestByEmail returns the most recent quiz result for an email, or
// nil if none exists.
func (s *QuizStore) GetLatestByEmail(email string) (*model.QuizResult, error) {
	row := s.db.QueryRow(
		`SELECT `+quizCols+` FROM quiz_results WHERE email = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		email,
	)
	q, err := scanQuizResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz result by email: %w", err)
	}
	return q, nil
}

// LinkToAccount attaches all quiz results for an email to the account
// created at signup.
func (s *QuizStore) LinkToAccount(email string, accountID int64) error {
	_, err := s.db.Exec(
		`UPDATE quiz_results SET account_id = ? WHERE email = ? AND account_id IS NULL`,
		accountID, email,
	)
	if err != nil {
		return fmt.Errorf("link quiz results: %w", err)
	}
	return nil
}
