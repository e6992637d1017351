package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rowanhealth/rowan/internal/model"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	var stripeID sql.NullString
	var trialStart, subStart sql.NullTime
	err := scanner.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Status, &stripeID,
		&trialStart, &subStart, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if stripeID.Valid {
		a.StripeCustomerID = &stripeID.String
	}
	if trialStart.Valid {
		a.TrialStart = &trialStart.Time
	}
	if subStart.Valid {
		a.SubscriptionStart = &subStart.Time
	}
	return &a, nil
}

const accountCols = `id, email, password_hash, status, stripe_customer_id, trial_start, subscription_start, created_at, updated_at`

// Create inserts a trialing account with trial-start set to now and
// module 1 already unlocked.
func (s *AccountStore) Create(email, passwordHash string) (*model.Account, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO accounts (email, password_hash, status, trial_start) VALUES (?, ?, ?, ?)`,
		email, passwordHash, model.StatusTrialing, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO account_modules (account_id, module) VALUES (?, 1)`,
		id,
	); err != nil {
		return nil, fmt.Errorf("unlock module 1: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *AccountStore) GetByID(id int64) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if err := s.loadModules(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AccountStore) GetByEmail(email string) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	if err := s.loadModules(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AccountStore) loadModules(a *model.Account) error {
	rows, err := s.db.Query(
		`SELECT module FROM account_modules WHERE account_id = ? ORDER BY module`,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	defer rows.Close()

	a.UnlockedModules = []int{}
	for rows.Next() {
		var m int
		if err := rows.Scan(&m); err != nil {
			return fmt.Errorf("scan module: %w", err)
		}
		a.UnlockedModules = append(a.UnlockedModules, m)
	}
	return rows.Err()
}

func (s *AccountStore) UpdateStatus(id int64, status model.SubscriptionStatus) error {
	_, err := s.db.Exec(
		`UPDATE accounts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	return nil
}

func (s *AccountStore) UpdateStripeCustomerID(id int64, customerID string) error {
	_, err := s.db.Exec(
		`UPDATE accounts SET stripe_customer_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		customerID, id,
	)
	if err != nil {
		return fmt.Errorf("update stripe customer id: %w", err)
	}
	return nil
}

// SetSubscriptionStartOnce records the first successful payment capture.
// The conditional WHERE keeps the timestamp immutable: later payments
// and resubscriptions never move the anchor.
func (s *AccountStore) SetSubscriptionStartOnce(id int64, start time.Time) error {
	_, err := s.db.Exec(
		`UPDATE accounts SET subscription_start = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND subscription_start IS NULL`,
		start.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set subscription start: %w", err)
	}
	return nil
}

// UnlockModules merges the given modules into the account's persisted
// set and returns the ones that were actually new. INSERT OR IGNORE
// makes the merge a set union at the database, so two concurrent
// evaluations cannot lose each other's writes.
func (s *AccountStore) UnlockModules(accountID int64, modules []int) ([]int, error) {
	if len(modules) == 0 {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var newly []int
	for _, m := range modules {
		result, err := tx.Exec(
			`INSERT OR IGNORE INTO account_modules (account_id, module) VALUES (?, ?)`,
			accountID, m,
		)
		if err != nil {
			return nil, fmt.Errorf("unlock module %d: %w", m, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if n > 0 {
			newly = append(newly, m)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return newly, nil
}

// ListUnpaid returns accounts that have never converted or have
// canceled, for the archiver sweep.
func (s *AccountStore) ListUnpaid() ([]*model.Account, error) {
	rows, err := s.db.Query(
		`SELECT ` + accountCols + ` FROM accounts WHERE status IN ('none', 'trialing', 'canceled')`,
	)
	if err != nil {
		return nil, fmt.Errorf("list unpaid accounts: %w", err)
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
