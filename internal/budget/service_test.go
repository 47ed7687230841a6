package budget

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lachiem1/paycycle/internal/finance"
	"github.com/lachiem1/paycycle/internal/storage"
)

type memoryRepo struct {
	state   finance.State
	found   bool
	saves   int
	loadErr error
	saveErr error
}

func (r *memoryRepo) Load(context.Context) (finance.State, bool, error) {
	if r.loadErr != nil {
		return finance.State{}, false, r.loadErr
	}
	return r.state.Clone(), r.found, nil
}

func (r *memoryRepo) Save(_ context.Context, state finance.State) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.state = state.Clone()
	r.found = true
	r.saves++
	return nil
}

type memoryRecorder struct {
	records []storage.RolloverRecord
	err     error
}

func (r *memoryRecorder) Record(_ context.Context, rec storage.RolloverRecord) error {
	r.records = append(r.records, rec)
	return r.err
}

var testNow = time.Date(2026, time.June, 10, 9, 0, 0, 0, time.Local)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(t *testing.T, repo *memoryRepo) (*Service, *memoryRecorder) {
	t.Helper()
	rec := &memoryRecorder{}
	svc := NewService(repo, quietLogger(),
		WithClock(func() time.Time { return testNow }),
		WithRolloverRecorder(rec),
	)
	require.NoError(t, svc.Load(context.Background()))
	return svc, rec
}

func onboarded() *memoryRepo {
	return &memoryRepo{
		found: true,
		state: finance.State{
			CurrentBalance:   1000,
			NextSalaryDate:   "2026-06-20",
			NextSalaryAmount: 3000,
		},
	}
}

func TestServiceRequiresLoad(t *testing.T) {
	svc := NewService(onboarded(), quietLogger())

	_, err := svc.Snapshot()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, svc.SetBalance(context.Background(), 10), ErrNotLoaded)
	_, err = svc.ForceRollover(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestServiceLoadEmpty(t *testing.T) {
	repo := &memoryRepo{}
	svc, rec := newTestService(t, repo)

	st, err := svc.Snapshot()
	require.NoError(t, err)
	assert.True(t, st.HasMissingData())
	assert.NotNil(t, st.Expenses)
	assert.Zero(t, repo.saves)
	assert.Empty(t, rec.records)
}

func TestServiceLoadPropagatesRepoError(t *testing.T) {
	svc := NewService(&memoryRepo{loadErr: errors.New("disk gone")}, quietLogger())
	err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestServiceLoadRollsOverdueCycles(t *testing.T) {
	repo := onboarded()
	repo.state.NextSalaryDate = "2026-04-20"
	repo.state.Expenses = []finance.Expense{{ID: "a", Amount: 500, Date: "2026-04-01T10:00:00Z"}}

	svc, rec := newTestService(t, repo)

	st, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "2026-06-20", st.NextSalaryDate)
	require.Len(t, st.CyclesHistory, 2)
	assert.InDelta(t, 2500, st.CyclesHistory[0].SavedAmount, 1e-9)
	assert.InDelta(t, 3000, st.CyclesHistory[1].SavedAmount, 1e-9)
	assert.Empty(t, st.Expenses)

	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, "2026-06-20", repo.state.NextSalaryDate)
	require.Len(t, rec.records, 1)
	assert.Equal(t, 2, rec.records[0].CyclesClosed)
	assert.False(t, rec.records[0].Forced)
}

func TestServiceUpdateRollsBeforeMutating(t *testing.T) {
	repo := onboarded()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.AddExpense(ctx, 100, "Lazer")
	require.NoError(t, err)

	// Move the clock past the pay date: the old expense must be archived with
	// its cycle, and the new one must land in the fresh cycle.
	svc.now = func() time.Time { return time.Date(2026, time.June, 21, 9, 0, 0, 0, time.Local) }
	added, err := svc.AddExpense(ctx, 40, "")
	require.NoError(t, err)

	st, err := svc.Snapshot()
	require.NoError(t, err)
	require.Len(t, st.CyclesHistory, 1)
	assert.InDelta(t, 100, st.CyclesHistory[0].TotalExpenses, 1e-9)
	require.Len(t, st.Expenses, 1)
	assert.Equal(t, added.ID, st.Expenses[0].ID)
	assert.Equal(t, finance.DefaultCategory, st.Expenses[0].Category)
	assert.Equal(t, "2026-07-20", st.NextSalaryDate)
}

func TestServiceRefresh(t *testing.T) {
	repo := onboarded()
	svc, rec := newTestService(t, repo)
	ctx := context.Background()

	closed, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Zero(t, closed)
	assert.Zero(t, repo.saves)

	svc.now = func() time.Time { return time.Date(2026, time.June, 20, 8, 0, 0, 0, time.Local) }
	closed, err = svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, "2026-07-20", repo.state.NextSalaryDate)
	require.Len(t, rec.records, 1)
	assert.False(t, rec.records[0].Forced)

	_, err = NewService(onboarded(), quietLogger()).Refresh(ctx)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestServiceUpdateFailureKeepsState(t *testing.T) {
	repo := onboarded()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	boom := errors.New("boom")
	err := svc.Update(ctx, func(st *finance.State) error {
		st.CurrentBalance = 1
		return boom
	})
	assert.ErrorIs(t, err, boom)

	repo.saveErr = errors.New("read-only")
	require.Error(t, svc.SetBalance(ctx, 5))

	st, err := svc.Snapshot()
	require.NoError(t, err)
	assert.InDelta(t, 1000, st.CurrentBalance, 1e-9)
}

func TestServiceUpdateKeepsRolloverWhenMutationFails(t *testing.T) {
	repo := onboarded()
	svc, rec := newTestService(t, repo)
	ctx := context.Background()

	spent, err := svc.AddExpense(ctx, 100, "Lazer")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2026, time.June, 21, 9, 0, 0, 0, time.Local) }
	err = svc.RemoveExpense(ctx, spent.ID)
	require.ErrorIs(t, err, ErrExpenseNotFound)

	assert.Equal(t, "2026-07-20", repo.state.NextSalaryDate)
	require.Len(t, repo.state.CyclesHistory, 1)
	assert.InDelta(t, 100, repo.state.CyclesHistory[0].TotalExpenses, 1e-9)
	assert.Empty(t, repo.state.Expenses)
	require.Len(t, rec.records, 1)
	assert.Equal(t, 1, rec.records[0].CyclesClosed)

	st, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "2026-07-20", st.NextSalaryDate)
}

func TestServiceOnboardValidates(t *testing.T) {
	svc, _ := newTestService(t, &memoryRepo{})
	ctx := context.Background()

	assert.ErrorIs(t, svc.Onboard(ctx, 100, "soon", 10), ErrInvalidDate)
	assert.ErrorIs(t, svc.Onboard(ctx, -1, "2026-06-20", 10), ErrNegativeAmount)
	assert.ErrorIs(t, svc.Onboard(ctx, 100, "2026-06-20", 0), ErrInvalidAmount)

	assert.ErrorIs(t, svc.Onboard(ctx, 100, "2026-06-20T00:00:00.000Z", 10), ErrInvalidDate)
	require.NoError(t, svc.Onboard(ctx, 1500, "2026-06-20", 3000))
	st, err := svc.Snapshot()
	require.NoError(t, err)
	assert.False(t, st.HasMissingData())
	assert.Equal(t, "2026-06-20", st.NextSalaryDate)
}

func TestServiceSetters(t *testing.T) {
	svc, _ := newTestService(t, onboarded())
	ctx := context.Background()

	require.NoError(t, svc.SetBalance(ctx, 0))
	require.NoError(t, svc.SetNextSalaryDate(ctx, "2026-06-25"))
	require.NoError(t, svc.SetNextSalaryAmount(ctx, 3200))
	require.NoError(t, svc.SetGoal(ctx, 250))
	assert.ErrorIs(t, svc.SetGoal(ctx, -1), ErrNegativeAmount)
	assert.ErrorIs(t, svc.SetNextSalaryAmount(ctx, 0), ErrInvalidAmount)
	assert.ErrorIs(t, svc.SetNextSalaryDate(ctx, ""), ErrInvalidDate)
	assert.ErrorIs(t, svc.SetNextSalaryDate(ctx, "03/02/2026"), ErrInvalidDate)
	assert.ErrorIs(t, svc.SetNextSalaryDate(ctx, "2026-6-25"), ErrInvalidDate)

	st, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, st.CurrentBalance)
	assert.Equal(t, "2026-06-25", st.NextSalaryDate)
	assert.InDelta(t, 3200, st.NextSalaryAmount, 1e-9)
	assert.InDelta(t, 250, st.GoalAmount, 1e-9)
}

func TestServiceRemoveExpense(t *testing.T) {
	svc, _ := newTestService(t, onboarded())
	ctx := context.Background()

	a, err := svc.AddExpense(ctx, 10, "Transporte")
	require.NoError(t, err)
	b, err := svc.AddExpense(ctx, 20, "Saúde")
	require.NoError(t, err)

	_, err = svc.AddExpense(ctx, 0, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	require.NoError(t, svc.RemoveExpense(ctx, a.ID))
	assert.ErrorIs(t, svc.RemoveExpense(ctx, a.ID), ErrExpenseNotFound)

	st, err := svc.Snapshot()
	require.NoError(t, err)
	require.Len(t, st.Expenses, 1)
	assert.Equal(t, b.ID, st.Expenses[0].ID)
}

func TestServiceLongTermGoal(t *testing.T) {
	repo := onboarded()
	repo.state.LongTermGoal = finance.LongTermGoal{TargetAmount: 500, AccumulatedAmount: 300}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	require.NoError(t, svc.SetLongTermGoal(ctx, 200))
	st, _ := svc.Snapshot()
	assert.True(t, st.LongTermGoal.IsCompleted)
	assert.InDelta(t, 300, st.LongTermGoal.AccumulatedAmount, 1e-9)

	require.NoError(t, svc.ResetLongTermGoal(ctx))
	st, _ = svc.Snapshot()
	assert.Equal(t, finance.LongTermGoal{TargetAmount: 200}, st.LongTermGoal)
}

func TestServiceForceRollover(t *testing.T) {
	repo := onboarded()
	svc, rec := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.AddExpense(ctx, 1200, "Moradia")
	require.NoError(t, err)
	require.NoError(t, svc.SetGoal(ctx, 2000))

	st, err := svc.ForceRollover(ctx)
	require.NoError(t, err)
	require.Len(t, st.CyclesHistory, 1)
	entry := st.CyclesHistory[0]
	assert.Equal(t, "2026-06-20", entry.CycleDate)
	assert.InDelta(t, 1800, entry.SavedAmount, 1e-9)
	assert.False(t, entry.GoalAchieved)
	assert.Equal(t, "2026-07-20", st.NextSalaryDate)
	assert.Empty(t, st.Expenses)
	assert.Zero(t, st.GoalAmount)

	require.Len(t, rec.records, 1)
	assert.True(t, rec.records[0].Forced)
	assert.Equal(t, "2026-07-20", repo.state.NextSalaryDate)
}

func TestServiceForceRolloverNeedsPayDate(t *testing.T) {
	svc, _ := newTestService(t, &memoryRepo{})
	_, err := svc.ForceRollover(context.Background())
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestServiceRecorderFailureIsNotFatal(t *testing.T) {
	repo := onboarded()
	repo.state.NextSalaryDate = "2026-06-01"
	rec := &memoryRecorder{err: errors.New("log table locked")}
	svc := NewService(repo, quietLogger(),
		WithClock(func() time.Time { return testNow }),
		WithRolloverRecorder(rec),
	)
	require.NoError(t, svc.Load(context.Background()))

	st, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "2026-07-01", st.NextSalaryDate)
	assert.Len(t, rec.records, 1)
}

func TestServiceDashboard(t *testing.T) {
	svc, _ := newTestService(t, onboarded())
	d, err := svc.Dashboard()
	require.NoError(t, err)
	require.NotNil(t, d.Projection)
	assert.Equal(t, 10, d.Projection.DaysLeft)
}
