package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/lachiem1/paycycle/internal/dateutil"
	"github.com/lachiem1/paycycle/internal/finance"
)

const (
	FinanceStateKey = "finance_state"
	// FinanceStateVersion is the blob schema written by this build. Versions 0
	// and 1 are the unversioned/legacy store shape and are migrated on load.
	FinanceStateVersion = 2
)

// FinanceStateRepo persists the whole finance.State as one JSON blob under a
// single app_config key.
type FinanceStateRepo struct {
	configs *AppConfigRepo
}

func NewFinanceStateRepo(db *sql.DB) *FinanceStateRepo {
	return &FinanceStateRepo{configs: NewAppConfigRepo(db)}
}

// Load returns the stored state. The boolean is false when nothing has been
// stored yet.
func (r *FinanceStateRepo) Load(ctx context.Context) (finance.State, bool, error) {
	raw, ok, err := r.configs.Get(ctx, FinanceStateKey)
	if err != nil {
		return finance.State{}, false, err
	}
	if !ok {
		return finance.State{}, false, nil
	}
	state, err := DecodeFinanceState([]byte(raw))
	if err != nil {
		return finance.State{}, false, fmt.Errorf("decode %s: %w", FinanceStateKey, err)
	}
	return state, true, nil
}

func (r *FinanceStateRepo) Save(ctx context.Context, state finance.State) error {
	raw, err := EncodeFinanceState(state)
	if err != nil {
		return fmt.Errorf("encode %s: %w", FinanceStateKey, err)
	}
	return r.configs.UpsertMany(ctx, map[string]string{FinanceStateKey: string(raw)})
}

type stateEnvelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// Every field is optional on the way in so absent values can be defaulted
// instead of silently becoming zero.
type storedState struct {
	CurrentBalance   *float64                    `json:"currentBalance"`
	NextSalaryDate   *string                     `json:"nextSalaryDate"`
	NextSalaryAmount *float64                    `json:"nextSalaryAmount"`
	GoalAmount       *float64                    `json:"goalAmount"`
	LongTermGoal     *storedLongTermGoal         `json:"longTermGoal"`
	Expenses         []storedExpense             `json:"expenses"`
	CyclesHistory    []finance.CycleHistoryEntry `json:"cyclesHistory"`
}

type storedLongTermGoal struct {
	TargetAmount      *float64 `json:"targetAmount"`
	AccumulatedAmount *float64 `json:"accumulatedAmount"`
	IsCompleted       *bool    `json:"isCompleted"`
}

type storedExpense struct {
	ID       string   `json:"id"`
	Amount   *float64 `json:"amount"`
	Date     string   `json:"date"`
	Category string   `json:"category"`
}

func EncodeFinanceState(state finance.State) ([]byte, error) {
	body, err := json.Marshal(state.Clone())
	if err != nil {
		return nil, err
	}
	return json.Marshal(stateEnvelope{Version: FinanceStateVersion, State: body})
}

// DecodeFinanceState reads any supported blob version and returns a fully
// defaulted state.
func DecodeFinanceState(raw []byte) (finance.State, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return finance.State{}, fmt.Errorf("parse state blob: %w", err)
	}

	version := 1
	body := json.RawMessage(raw)
	if inner, ok := probe["state"]; ok {
		var env stateEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return finance.State{}, fmt.Errorf("parse state envelope: %w", err)
		}
		version = env.Version
		body = inner
	}
	if version > FinanceStateVersion {
		return finance.State{}, fmt.Errorf(
			"state blob version %d is newer than supported version %d",
			version,
			FinanceStateVersion,
		)
	}

	var stored storedState
	if err := json.Unmarshal(body, &stored); err != nil {
		return finance.State{}, fmt.Errorf("parse state v%d: %w", version, err)
	}
	return stored.normalize(), nil
}

func (s storedState) normalize() finance.State {
	out := finance.State{
		CurrentBalance:   finiteOr(s.CurrentBalance, 0),
		NextSalaryDate:   normalizeSalaryDate(s.NextSalaryDate),
		NextSalaryAmount: finiteOr(s.NextSalaryAmount, 0),
		GoalAmount:       math.Max(finiteOr(s.GoalAmount, 0), 0),
		Expenses:         make([]finance.Expense, 0, len(s.Expenses)),
		CyclesHistory:    append([]finance.CycleHistoryEntry{}, s.CyclesHistory...),
	}

	if s.LongTermGoal != nil {
		target := math.Max(finiteOr(s.LongTermGoal.TargetAmount, 0), 0)
		accumulated := math.Max(finiteOr(s.LongTermGoal.AccumulatedAmount, 0), 0)
		completed := s.LongTermGoal.IsCompleted != nil && *s.LongTermGoal.IsCompleted
		out.LongTermGoal = finance.LongTermGoal{
			TargetAmount:      target,
			AccumulatedAmount: accumulated,
			IsCompleted:       completed || (target > 0 && accumulated >= target),
		}
	}

	for _, e := range s.Expenses {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		out.Expenses = append(out.Expenses, finance.Expense{
			ID:       id,
			Amount:   finiteOr(e.Amount, 0),
			Date:     e.Date,
			Category: finance.NormalizeCategory(e.Category),
		})
	}
	return out
}

// normalizeSalaryDate reduces a stored pay date to YYYY-MM-DD. Unparseable
// values are kept as-is; the engine treats them as a no-op.
func normalizeSalaryDate(raw *string) string {
	if raw == nil {
		return ""
	}
	t, ok := dateutil.ParseDateOnly(*raw)
	if !ok {
		return *raw
	}
	return dateutil.FormatDateOnly(t)
}

func finiteOr(v *float64, fallback float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fallback
	}
	return *v
}
