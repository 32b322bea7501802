package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stanstork/maintenance-api/internal/models"
)

// IssueFilter narrows issue listings. A nil EquipmentIDs matches every
// equipment; an empty non-nil slice matches none.
type IssueFilter struct {
	Status       models.IssueStatus
	Severity     models.IssueSeverity
	EquipmentIDs []string
}

type IssueRepository interface {
	Create(ctx context.Context, issue models.IssueReport) (models.IssueReport, error)
	List(ctx context.Context, filter IssueFilter) ([]models.IssueReport, error)
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus) (models.IssueReport, error)
	// CountByEquipment returns the number of reports per equipment id,
	// restricted to filter.EquipmentIDs when set.
	CountByEquipment(ctx context.Context, filter IssueFilter) (map[string]int, error)
}

type issueRepository struct {
	db *sqlx.DB
}

func NewIssueRepository(db *sqlx.DB) IssueRepository {
	return &issueRepository{db: db}
}

const issueColumns = `id, equipment_id, reported_by, date_time, description, severity, status, attachment_path`

func (r *issueRepository) Create(ctx context.Context, issue models.IssueReport) (models.IssueReport, error) {
	const query = `
		INSERT INTO maint.issue_reports (id, equipment_id, reported_by, date_time, description, severity, status, attachment_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + issueColumns

	var created models.IssueReport
	err := r.db.GetContext(ctx, &created, query,
		issue.ID, issue.EquipmentID, issue.ReportedBy, issue.DateTime,
		issue.Description, issue.Severity, issue.Status, issue.AttachmentPath)
	return created, err
}

func issueConditions(filter IssueFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)))
	}
	if filter.EquipmentIDs != nil {
		args = append(args, pq.Array(filter.EquipmentIDs))
		conditions = append(conditions, fmt.Sprintf("equipment_id = ANY($%d)", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *issueRepository) List(ctx context.Context, filter IssueFilter) ([]models.IssueReport, error) {
	issues := []models.IssueReport{}
	if filter.EquipmentIDs != nil && len(filter.EquipmentIDs) == 0 {
		return issues, nil
	}

	where, args := issueConditions(filter)
	query := `SELECT ` + issueColumns + ` FROM maint.issue_reports` + where + ` ORDER BY date_time DESC`

	if err := r.db.SelectContext(ctx, &issues, query, args...); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *issueRepository) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) (models.IssueReport, error) {
	const query = `
		UPDATE maint.issue_reports SET status = $2
		WHERE id = $1
		RETURNING ` + issueColumns

	var issue models.IssueReport
	if err := r.db.GetContext(ctx, &issue, query, strings.TrimSpace(id), status); err != nil {
		return models.IssueReport{}, notFound(err)
	}
	return issue, nil
}

func (r *issueRepository) CountByEquipment(ctx context.Context, filter IssueFilter) (map[string]int, error) {
	counts := make(map[string]int)
	if filter.EquipmentIDs != nil && len(filter.EquipmentIDs) == 0 {
		return counts, nil
	}

	where, args := issueConditions(filter)
	query := `SELECT equipment_id, COUNT(*) AS total FROM maint.issue_reports` + where + ` GROUP BY equipment_id`

	var rows []struct {
		EquipmentID string `db:"equipment_id"`
		Total       int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.EquipmentID] = row.Total
	}
	return counts, nil
}
