package workflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stanstork/maintenance-api/internal/maintenance"
	"github.com/stanstork/maintenance-api/internal/temporal"
	"github.com/stanstork/maintenance-api/internal/temporal/activities"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type stubSweeper struct {
	result maintenance.SweepResult
	err    error
	calls  int
}

func (s *stubSweeper) ReevaluateAll(context.Context) (maintenance.SweepResult, error) {
	s.calls++
	return s.result, s.err
}

type SweepWorkflowSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env *testsuite.TestWorkflowEnvironment
}

func (s *SweepWorkflowSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
}

func (s *SweepWorkflowSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func (s *SweepWorkflowSuite) TestReportsSweepCounts() {
	started := time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC)
	sweeper := &stubSweeper{result: maintenance.SweepResult{
		Evaluated:  12,
		Notified:   3,
		Suppressed: 2,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}}
	s.env.RegisterActivity(&activities.Activities{Engine: sweeper})

	s.env.ExecuteWorkflow(MaintenanceSweepWorkflow, temporal.SweepParams{Trigger: "cron"})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var report temporal.SweepReport
	s.NoError(s.env.GetWorkflowResult(&report))
	s.Equal(12, report.Evaluated)
	s.Equal(3, report.Notified)
	s.Equal(2, report.Suppressed)
	s.Empty(report.Errors)
	s.Equal(1, sweeper.calls)
}

func (s *SweepWorkflowSuite) TestPartialFailuresDoNotFailWorkflow() {
	sweeper := &stubSweeper{
		result: maintenance.SweepResult{Evaluated: 3, Notified: 1, Failed: 2},
		err:    errors.Join(errors.New("insert EQ-1"), errors.New("insert EQ-2")),
	}
	s.env.RegisterActivity(&activities.Activities{Engine: sweeper})

	s.env.ExecuteWorkflow(MaintenanceSweepWorkflow, temporal.SweepParams{Trigger: "manual"})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	var report temporal.SweepReport
	s.NoError(s.env.GetWorkflowResult(&report))
	s.Equal(2, report.Failed)
	s.Equal([]string{"insert EQ-1", "insert EQ-2"}, report.Errors)
}

func (s *SweepWorkflowSuite) TestActivityFailureFailsWorkflow() {
	a := &activities.Activities{Engine: &stubSweeper{}}
	s.env.RegisterActivity(a)
	s.env.OnActivity(a.ReevaluateAllActivity, mock.Anything).
		Return(temporal.SweepReport{}, sdktemporal.NewNonRetryableApplicationError("database down", "sweep", nil)).
		Once()

	s.env.ExecuteWorkflow(MaintenanceSweepWorkflow, temporal.SweepParams{Trigger: "cron"})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func TestSweepWorkflowSuite(t *testing.T) {
	suite.Run(t, new(SweepWorkflowSuite))
}
