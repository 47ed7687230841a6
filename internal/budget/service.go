// Package budget owns the live finance.State. Every mutation goes through
// Update, which first rolls elapsed pay cycles into history and then applies
// the change and persists the result as one step.
package budget

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lachiem1/paycycle/internal/dateutil"
	"github.com/lachiem1/paycycle/internal/finance"
	"github.com/lachiem1/paycycle/internal/storage"
)

var (
	ErrNotLoaded       = errors.New("budget state not loaded")
	ErrInvalidAmount   = errors.New("amount must be greater than 0")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrExpenseNotFound = errors.New("expense not found")
)

type StateRepository interface {
	Load(ctx context.Context) (finance.State, bool, error)
	Save(ctx context.Context, state finance.State) error
}

// RolloverRecorder receives one record per rollover that closed cycles.
type RolloverRecorder interface {
	Record(ctx context.Context, rec storage.RolloverRecord) error
}

type Service struct {
	repo     StateRepository
	recorder RolloverRecorder
	log      *logrus.Logger
	now      func() time.Time

	mu     sync.Mutex
	state  finance.State
	loaded bool
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithRolloverRecorder(r RolloverRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func NewService(repo StateRepository, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.New()
	}
	return s
}

// Today is the service clock's current instant.
func (s *Service) Today() time.Time {
	return s.now()
}

// Load rehydrates the state and runs one rollover pass over it.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, found, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load finance state: %w", err)
	}
	if !found {
		s.log.Debug("no stored finance state, starting empty")
		state = finance.State{}
	}
	state = state.Clone()

	rolled, closed := finance.EnsureCycleCurrent(state, s.now())
	if closed > 0 {
		if err := s.commit(ctx, rolled, closed, false); err != nil {
			return err
		}
	} else {
		s.state = rolled
	}
	s.loaded = true
	return nil
}

// Refresh closes any cycle that became overdue since the last load or
// mutation, and returns how many were closed.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return 0, ErrNotLoaded
	}
	rolled, closed := finance.EnsureCycleCurrent(s.state.Clone(), s.now())
	if closed == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, rolled, closed, false); err != nil {
		return 0, err
	}
	return closed, nil
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() (finance.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return finance.State{}, ErrNotLoaded
	}
	return s.state.Clone(), nil
}

// Dashboard derives the dashboard for the clock's today.
func (s *Service) Dashboard() (finance.Dashboard, error) {
	state, err := s.Snapshot()
	if err != nil {
		return finance.Dashboard{}, err
	}
	return finance.BuildDashboard(state, s.now()), nil
}

// Update is the read-roll-then-mutate primitive. A due rollover is committed
// first and stands on its own. fn then receives a private copy of the rolled
// state; if fn or its save fails, the live state stays as rolled.
func (s *Service) Update(ctx context.Context, fn func(*finance.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}

	rolled, closed := finance.EnsureCycleCurrent(s.state.Clone(), s.now())
	if closed > 0 {
		if err := s.commit(ctx, rolled, closed, false); err != nil {
			return err
		}
	}

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	return s.commit(ctx, next, 0, false)
}

// ForceRollover closes the open cycle now, even if its pay date is ahead.
func (s *Service) ForceRollover(ctx context.Context) (finance.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return finance.State{}, ErrNotLoaded
	}

	today := s.now()
	next, closed := finance.EnsureCycleCurrent(s.state.Clone(), today)
	if closed > 0 {
		// The overdue cycles are closed first; the manual advance then closes
		// the freshly opened one.
		if err := s.commit(ctx, next, closed, false); err != nil {
			return finance.State{}, err
		}
	}

	patch, ok := finance.Rollover(next, today, true)
	if !ok {
		return finance.State{}, fmt.Errorf("force rollover: %w", ErrInvalidDate)
	}
	if err := s.commit(ctx, patch.Apply(next), patch.CyclesClosed, true); err != nil {
		return finance.State{}, err
	}
	return s.state.Clone(), nil
}

// commit persists next and makes it live. Callers hold s.mu.
func (s *Service) commit(ctx context.Context, next finance.State, closed int, forced bool) error {
	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("save finance state: %w", err)
	}
	s.state = next

	if closed == 0 {
		return nil
	}
	s.log.WithFields(logrus.Fields{
		"cycles_closed":    closed,
		"forced":           forced,
		"next_salary_date": next.NextSalaryDate,
	}).Info("pay cycle rolled over")

	if s.recorder != nil {
		rec := storage.RolloverRecord{
			RanAt:          s.now(),
			CyclesClosed:   closed,
			Forced:         forced,
			NextSalaryDate: next.NextSalaryDate,
		}
		if err := s.recorder.Record(ctx, rec); err != nil {
			// The state is already saved; a lost audit row is not worth failing for.
			s.log.WithError(err).Warn("record rollover")
		}
	}
	return nil
}

// Onboard sets the three facts a projection needs.
func (s *Service) Onboard(ctx context.Context, balance float64, nextSalaryDate string, salary float64) error {
	payDate, err := normalizeDate(nextSalaryDate)
	if err != nil {
		return err
	}
	if err := validateNonNegative(balance); err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	if err := validatePositive(salary); err != nil {
		return fmt.Errorf("salary: %w", err)
	}

	return s.Update(ctx, func(st *finance.State) error {
		st.CurrentBalance = balance
		st.NextSalaryDate = payDate
		st.NextSalaryAmount = salary
		// A pay date already in the past rolls over on the next mutation.
		s.log.WithFields(logrus.Fields{
			"balance":          balance,
			"next_salary_date": payDate,
			"salary":           salary,
		}).Debug("onboarded")
		return nil
	})
}

func (s *Service) SetBalance(ctx context.Context, balance float64) error {
	if err := validateNonNegative(balance); err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	return s.Update(ctx, func(st *finance.State) error {
		st.CurrentBalance = balance
		return nil
	})
}

func (s *Service) SetNextSalaryDate(ctx context.Context, date string) error {
	payDate, err := normalizeDate(date)
	if err != nil {
		return err
	}
	return s.Update(ctx, func(st *finance.State) error {
		st.NextSalaryDate = payDate
		return nil
	})
}

func (s *Service) SetNextSalaryAmount(ctx context.Context, amount float64) error {
	if err := validatePositive(amount); err != nil {
		return fmt.Errorf("salary: %w", err)
	}
	return s.Update(ctx, func(st *finance.State) error {
		st.NextSalaryAmount = amount
		return nil
	})
}

// AddExpense logs an expense against the open cycle, stamped with the clock's
// current instant.
func (s *Service) AddExpense(ctx context.Context, amount float64, category string) (finance.Expense, error) {
	if err := validatePositive(amount); err != nil {
		return finance.Expense{}, err
	}

	expense := finance.Expense{
		ID:       uuid.NewString(),
		Amount:   amount,
		Date:     s.now().UTC().Format(time.RFC3339Nano),
		Category: finance.NormalizeCategory(category),
	}
	err := s.Update(ctx, func(st *finance.State) error {
		st.Expenses = append(st.Expenses, expense)
		return nil
	})
	if err != nil {
		return finance.Expense{}, err
	}
	s.log.WithFields(logrus.Fields{"id": expense.ID, "amount": amount, "category": expense.Category}).Debug("expense added")
	return expense, nil
}

func (s *Service) RemoveExpense(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	return s.Update(ctx, func(st *finance.State) error {
		for i, e := range st.Expenses {
			if e.ID == id {
				st.Expenses = append(st.Expenses[:i], st.Expenses[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrExpenseNotFound, id)
	})
}

// SetGoal sets the short-term goal of the open cycle. 0 clears it.
func (s *Service) SetGoal(ctx context.Context, amount float64) error {
	if err := validateNonNegative(amount); err != nil {
		return fmt.Errorf("goal: %w", err)
	}
	return s.Update(ctx, func(st *finance.State) error {
		st.GoalAmount = amount
		return nil
	})
}

// SetLongTermGoal changes the target and keeps what has been accumulated.
func (s *Service) SetLongTermGoal(ctx context.Context, target float64) error {
	if err := validateNonNegative(target); err != nil {
		return fmt.Errorf("long-term goal: %w", err)
	}
	return s.Update(ctx, func(st *finance.State) error {
		st.LongTermGoal = st.LongTermGoal.WithTarget(target)
		return nil
	})
}

// ResetLongTermGoal clears the accumulator. It is the only way the
// accumulated amount ever goes down.
func (s *Service) ResetLongTermGoal(ctx context.Context) error {
	return s.Update(ctx, func(st *finance.State) error {
		st.LongTermGoal = finance.LongTermGoal{}.WithTarget(st.LongTermGoal.TargetAmount)
		return nil
	})
}

func normalizeDate(raw string) (string, error) {
	t, ok := dateutil.ParseInput(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return dateutil.FormatDateOnly(t), nil
}

func validatePositive(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func validateNonNegative(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return ErrNegativeAmount
	}
	return nil
}
