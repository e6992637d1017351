package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rowanhealth/rowan/internal/model"
)

type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

func scanReport(scanner interface{ Scan(...any) error }) (*model.Report, error) {
	var r model.Report
	err := scanner.Scan(
		&r.ID, &r.PublicID, &r.AccountID, &r.Kind, &r.Module,
		&r.Content, &r.Model, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const reportCols = `id, public_id, account_id, kind, module, content, model, created_at`

func (s *ReportStore) Create(accountID int64, kind string, module int, content, llmModel string) (*model.Report, error) {
	publicID := uuid.NewString()
	result, err := s.db.Exec(
		`INSERT INTO reports (public_id, account_id, kind, module, content, model) VALUES (?, ?, ?, ?, ?, ?)`,
		publicID, accountID, kind, module, content, llmModel,
	)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+reportCols+` FROM reports WHERE id = ?`, id)
	return scanReport(row)
}

func (s *ReportStore) GetByPublicID(publicID string) (*model.Report, error) {
	row := s.db.QueryRow(`SELECT `+reportCols+` FROM reports WHERE public_id = ?`, publicID)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

func (s *ReportStore) ListByAccountID(accountID int64) ([]*model.Report, error) {
	rows, err := s.db.Query(
		`SELECT `+reportCols+` FROM reports WHERE account_id = ? ORDER BY created_at DESC, id DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []*model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetInitial returns the account's initial report, or nil if it has not
// been generated.
func (s *ReportStore) GetInitial(accountID int64) (*model.Report, error) {
	row := s.db.QueryRow(
		`SELECT `+reportCols+` FROM reports WHERE account_id = ? AND kind = ? LIMIT 1`,
		accountID, model.ReportKindInitial,
	)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get initial report: %w", err)
	}
	return r, nil
}
