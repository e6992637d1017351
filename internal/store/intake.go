package store

import (
	"database/sql"
	"fmt"

	"github.com/rowanhealth/rowan/internal/model"
)

type IntakeStore struct {
	db *sql.DB
}

func NewIntakeStore(db *sql.DB) *IntakeStore {
	return &IntakeStore{db: db}
}

func scanIntakeForm(scanner interface{ Scan(...any) error }) (*model.IntakeForm, error) {
	var f model.IntakeForm
	err := scanner.Scan(
		&f.ID, &f.AccountID, &f.Age, &f.HeightCm, &f.WeightKg,
		&f.PrimaryGoal, &f.Symptoms, &f.Medications, &f.Notes, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

const intakeCols = `id, account_id, age, height_cm, weight_kg, primary_goal, symptoms, medications, notes, created_at`

func (s *IntakeStore) Create(f *model.IntakeForm) (*model.IntakeForm, error) {
	result, err := s.db.Exec(
		`INSERT INTO intake_forms (account_id, age, height_cm, weight_kg, primary_goal, symptoms, medications, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.AccountID, f.Age, f.HeightCm, f.WeightKg, f.PrimaryGoal, f.Symptoms, f.Medications, f.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert intake form: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+intakeCols+` FROM intake_forms WHERE id = ?`, id)
	return scanIntakeForm(row)
}

// GetByAccountID returns the account's intake form, or nil if it has not
// been submitted.
func (s *IntakeStore) GetByAccountID(accountID int64) (*model.IntakeForm, error) {
	row := s.db.QueryRow(`SELECT `+intakeCols+` FROM intake_forms WHERE account_id = ?`, accountID)
	f, err := scanIntakeForm(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get intake form: %w", err)
	}
	return f, nil
}

// Exists is the prerequisite check used by the module access guard.
func (s *IntakeStore) Exists(accountID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM intake_forms WHERE account_id = ?`, accountID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("intake form exists: %w", err)
	}
	return n > 0, nil
}
