package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"mealarena/errs"
	"mealarena/models"
)

type stubRandom struct {
	value float64
	err   error
}

func (s stubRandom) Draw(ctx context.Context) (float64, error) {
	return s.value, s.err
}

type statsCall struct {
	id      uint
	outcome string
}

type statsSpy struct {
	calls []statsCall
	err   error
}

func (s *statsSpy) UpdateMealStats(id uint, outcome string) error {
	s.calls = append(s.calls, statsCall{id: id, outcome: outcome})
	return s.err
}

func sampleMeal1() models.Meal {
	return models.Meal{ID: 1, Name: "Meal 1", Cuisine: "Cuisine 1", Price: 13.69, Difficulty: models.DifficultyLow}
}

func sampleMeal2() models.Meal {
	return models.Meal{ID: 2, Name: "Meal 2", Cuisine: "Cuisine 2", Price: 9.42, Difficulty: models.DifficultyMed}
}

func sampleMeal3() models.Meal {
	return models.Meal{ID: 3, Name: "Meal 3", Cuisine: "Cuisine 3", Price: 4.5, Difficulty: models.DifficultyHigh}
}

func newTestArena(random RandomSource, stats StatsRecorder) *BattleService {
	return NewBattleService(stats, random, nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), 0)
}

func TestBattleScore(t *testing.T) {
	arena := newTestArena(stubRandom{}, &statsSpy{})

	tests := []struct {
		name string
		meal models.Meal
		want float64
	}{
		{"low difficulty", sampleMeal1(), 13.69*9 - 3},
		{"med difficulty", sampleMeal2(), 9.42*6 - 3},
		{"high difficulty", sampleMeal3(), 4.5*3 - 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := arena.BattleScore(tt.meal)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("BattleScore(%s) = %v, want %v", tt.meal.Name, got, tt.want)
			}
			// Scoring has no side effects.
			if again := arena.BattleScore(tt.meal); again != got {
				t.Fatalf("BattleScore not deterministic: %v then %v", got, again)
			}
			if len(arena.Combatants()) != 0 {
				t.Fatalf("BattleScore mutated the combatant list")
			}
		})
	}
}

func TestBattleScoreKnownAnchor(t *testing.T) {
	arena := newTestArena(stubRandom{}, &statsSpy{})
	if got := arena.BattleScore(sampleMeal1()); math.Abs(got-120.21) > 1e-9 {
		t.Fatalf("BattleScore = %v, want 120.21", got)
	}
}

func TestPrepCombatant(t *testing.T) {
	arena := newTestArena(stubRandom{}, &statsSpy{})

	if err := arena.PrepCombatant(sampleMeal1()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}

	combatants := arena.Combatants()
	if len(combatants) != 1 {
		t.Fatalf("expected 1 combatant, got %d", len(combatants))
	}
	if combatants[0].Name != "Meal 1" {
		t.Fatalf("expected Meal 1, got %s", combatants[0].Name)
	}
}

func TestPrepDuplicateCombatant(t *testing.T) {
	arena := newTestArena(stubRandom{}, &statsSpy{})

	if err := arena.PrepCombatant(sampleMeal1()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}
	err := arena.PrepCombatant(sampleMeal1())
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if len(arena.Combatants()) != 1 {
		t.Fatalf("duplicate prep changed the list, len = %d", len(arena.Combatants()))
	}
}

func TestPrepThirdCombatant(t *testing.T) {
	arena := newTestArena(stubRandom{}, &statsSpy{})

	if err := arena.PrepCombatant(sampleMeal1()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}
	if err := arena.PrepCombatant(sampleMeal2()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}
	err := arena.PrepCombatant(sampleMeal3())
	if !errors.Is(err, errs.ErrCapacity) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	if len(arena.Combatants()) != 2 {
		t.Fatalf("third prep changed the list, len = %d", len(arena.Combatants()))
	}
}

func TestClearCombatants(t *testing.T) {
	arena := newTestArena(stubRandom{}, &statsSpy{})

	if err := arena.PrepCombatant(sampleMeal1()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}
	if err := arena.PrepCombatant(sampleMeal2()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}

	arena.ClearCombatants()
	if len(arena.Combatants()) != 0 {
		t.Fatalf("expected empty list after clear, got %d", len(arena.Combatants()))
	}
}

func TestClearEmptyCombatantListWarns(t *testing.T) {
	var buf bytes.Buffer
	arena := NewBattleService(&statsSpy{}, stubRandom{}, nil, slog.New(slog.NewTextHandler(&buf, nil)), 0)

	arena.ClearCombatants()

	if len(arena.Combatants()) != 0 {
		t.Fatalf("expected empty list, got %d", len(arena.Combatants()))
	}
	if !strings.Contains(buf.String(), "clearing an empty combatant list") {
		t.Fatalf("expected warning log, got %q", buf.String())
	}
}

func TestCombatantsSnapshot(t *testing.T) {
	arena := newTestArena(stubRandom{}, &statsSpy{})

	for _, meal := range []models.Meal{sampleMeal1(), sampleMeal2()} {
		if err := arena.PrepCombatant(meal); err != nil {
			t.Fatalf("PrepCombatant returned %v", err)
		}
	}

	combatants := arena.Combatants()
	if combatants[0].ID != 1 || combatants[1].ID != 2 {
		t.Fatalf("expected insertion order [1 2], got [%d %d]", combatants[0].ID, combatants[1].ID)
	}

	// Mutating the snapshot must not touch arena state.
	combatants[0].Name = "mutated"
	if arena.Combatants()[0].Name != "Meal 1" {
		t.Fatalf("snapshot mutation leaked into arena state")
	}
}

func TestBattleNotEnoughCombatants(t *testing.T) {
	arena := newTestArena(stubRandom{value: 0.5}, &statsSpy{})

	if _, err := arena.Battle(context.Background()); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error with 0 combatants, got %v", err)
	}

	if err := arena.PrepCombatant(sampleMeal1()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}
	if _, err := arena.Battle(context.Background()); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error with 1 combatant, got %v", err)
	}
}

func TestBattleWinnerFlipsAcrossThreshold(t *testing.T) {
	tests := []struct {
		draw       string
		drawValue  float64
		wantWinner string
		wantLoser  string
	}{
		{"0.09", 0.09, "Meal 1", "Meal 2"},
		{"0.11", 0.11, "Meal 2", "Meal 1"},
	}

	for _, tt := range tests {
		t.Run("draw "+tt.draw, func(t *testing.T) {
			stats := &statsSpy{}
			arena := newTestArena(stubRandom{value: tt.drawValue}, stats)

			if err := arena.PrepCombatant(sampleMeal1()); err != nil {
				t.Fatalf("PrepCombatant returned %v", err)
			}
			if err := arena.PrepCombatant(sampleMeal2()); err != nil {
				t.Fatalf("PrepCombatant returned %v", err)
			}

			winner, err := arena.Battle(context.Background())
			if err != nil {
				t.Fatalf("Battle returned %v", err)
			}
			if winner != tt.wantWinner {
				t.Fatalf("winner = %s, want %s", winner, tt.wantWinner)
			}

			combatants := arena.Combatants()
			if len(combatants) != 1 || combatants[0].Name != tt.wantWinner {
				t.Fatalf("expected only %s to remain, got %v", tt.wantWinner, combatants)
			}

			if len(stats.calls) != 2 {
				t.Fatalf("expected 2 stat updates, got %d", len(stats.calls))
			}
			if stats.calls[0].outcome != OutcomeWin {
				t.Fatalf("first stats call outcome = %s, want %s", stats.calls[0].outcome, OutcomeWin)
			}
			if stats.calls[1].outcome != OutcomeLoss {
				t.Fatalf("second stats call outcome = %s, want %s", stats.calls[1].outcome, OutcomeLoss)
			}
		})
	}
}

func TestBattleDrawFailureLeavesCombatants(t *testing.T) {
	stats := &statsSpy{}
	arena := newTestArena(stubRandom{err: errs.ErrServiceUnavailable}, stats)

	if err := arena.PrepCombatant(sampleMeal1()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}
	if err := arena.PrepCombatant(sampleMeal2()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}

	if _, err := arena.Battle(context.Background()); !errors.Is(err, errs.ErrServiceUnavailable) {
		t.Fatalf("expected service unavailable, got %v", err)
	}
	if len(arena.Combatants()) != 2 {
		t.Fatalf("failed draw should leave both combatants, got %d", len(arena.Combatants()))
	}
	if len(stats.calls) != 0 {
		t.Fatalf("failed draw should not record stats, got %d calls", len(stats.calls))
	}
}

func TestBattleStatsFailurePropagates(t *testing.T) {
	stats := &statsSpy{err: errs.ErrAlreadyDeleted}
	arena := newTestArena(stubRandom{value: 0.5}, stats)

	if err := arena.PrepCombatant(sampleMeal1()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}
	if err := arena.PrepCombatant(sampleMeal2()); err != nil {
		t.Fatalf("PrepCombatant returned %v", err)
	}

	if _, err := arena.Battle(context.Background()); !errors.Is(err, errs.ErrAlreadyDeleted) {
		t.Fatalf("expected stats error to surface, got %v", err)
	}
	// The in-memory resolution is not rolled back.
	if len(arena.Combatants()) != 1 {
		t.Fatalf("expected resolved list of 1, got %d", len(arena.Combatants()))
	}
}
