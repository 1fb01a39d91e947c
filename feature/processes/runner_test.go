package processes

import (
	"context"
	"testing"

	"didp/feature/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockMatcher struct {
	mock.Mock
}

func (m *mockMatcher) Execute(ctx context.Context, configID uint) (*matching.ResultView, error) {
	args := m.Called(ctx, configID)
	if v := args.Get(0); v != nil {
		return v.(*matching.ResultView), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRunnerSkipsAfterFailure(t *testing.T) {
	m := new(mockMatcher)
	m.On("Execute", mock.Anything, uint(1)).Return(nil, assert.AnError).Once()
	r := &Runner{Matcher: m}

	rep := r.runSteps(context.Background(), []step{
		{order: 0, processType: TypeMatch, config: ProcessConfig{MatchConfigID: uintPtr(1)}},
		{order: 1, processType: TypeMatch, config: ProcessConfig{MatchConfigID: uintPtr(2)}},
	})

	assert.False(t, rep.Succeeded)
	assert.Equal(t, StatusFailed, rep.Steps[0].Status)
	assert.Equal(t, assert.AnError.Error(), rep.Steps[0].Error)
	assert.Equal(t, StatusSkipped, rep.Steps[1].Status)
	m.AssertExpectations(t)
}

func TestRunnerChecksConfigBeforeRunning(t *testing.T) {
	m := new(mockMatcher)
	r := &Runner{Matcher: m}

	_, err := r.Run(context.Background(), TypeMatch, ProcessConfig{})
	assert.Error(t, err)
	m.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestRunnerMatchSummary(t *testing.T) {
	m := new(mockMatcher)
	m.On("Execute", mock.Anything, uint(7)).Return(&matching.ResultView{ID: 3, MatchedCount: 5, UnmatchedTargetCount: 2}, nil)
	r := &Runner{Matcher: m}

	out, err := r.Run(context.Background(), TypeMatch, ProcessConfig{MatchConfigID: uintPtr(7)})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{
		"result_id":              uint(3),
		"matched_count":          5,
		"unmatched_source_count": 0,
		"unmatched_target_count": 2,
	}, out)
}
