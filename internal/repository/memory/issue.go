package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
)

type IssueRepository struct {
	mu     sync.RWMutex
	issues map[string]models.IssueReport
}

func NewIssueRepository() *IssueRepository {
	return &IssueRepository{issues: make(map[string]models.IssueReport)}
}

var _ repository.IssueRepository = (*IssueRepository)(nil)

func (r *IssueRepository) Create(_ context.Context, issue models.IssueReport) (models.IssueReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.issues[issue.ID]; exists {
		return models.IssueReport{}, repository.ErrAlreadyExists
	}
	r.issues[issue.ID] = issue
	return issue, nil
}

func (r *IssueRepository) List(_ context.Context, filter repository.IssueFilter) ([]models.IssueReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var allowed map[string]bool
	if filter.EquipmentIDs != nil {
		allowed = make(map[string]bool, len(filter.EquipmentIDs))
		for _, id := range filter.EquipmentIDs {
			allowed[id] = true
		}
	}

	result := []models.IssueReport{}
	for _, issue := range r.issues {
		if filter.Status != "" && issue.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && issue.Severity != filter.Severity {
			continue
		}
		if allowed != nil && !allowed[issue.EquipmentID] {
			continue
		}
		result = append(result, issue)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DateTime.After(result[j].DateTime)
	})
	return result, nil
}

func (r *IssueRepository) UpdateStatus(_ context.Context, id string, status models.IssueStatus) (models.IssueReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[strings.TrimSpace(id)]
	if !ok {
		return models.IssueReport{}, repository.ErrNotFound
	}
	issue.Status = status
	r.issues[issue.ID] = issue
	return issue, nil
}

func (r *IssueRepository) CountByEquipment(ctx context.Context, filter repository.IssueFilter) (map[string]int, error) {
	issues, err := r.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, issue := range issues {
		counts[issue.EquipmentID]++
	}
	return counts, nil
}
