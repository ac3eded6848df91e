package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"mealarena/errs"
	"mealarena/models"
)

// RandomSource supplies one draw in [0,1) per battle.
type RandomSource interface {
	Draw(ctx context.Context) (float64, error)
}

// StatsRecorder persists battle outcomes for a meal.
type StatsRecorder interface {
	UpdateMealStats(id uint, outcome string) error
}

const (
	maxCombatants = 2

	// scorePenalty is the flat amount subtracted from every battle score.
	scorePenalty = 3.0

	// defaultScoreNormalizer divides the score gap between two combatants
	// before the gap is compared against the random draw. Tuned so the
	// reference matchup (scores 120.21 vs 53.52) flips its winner between
	// draws of 0.09 and 0.11.
	defaultScoreNormalizer = 667.0
)

// BattleService stages up to two combatant meals, resolves battles between
// them and writes outcomes back through the stats recorder. The combatant
// list has no locking; callers serialize access, one arena per process.
type BattleService struct {
	combatants []models.Meal
	stats      StatsRecorder
	random     RandomSource
	hub        *Hub
	logger     *slog.Logger
	normalizer float64
}

func NewBattleService(stats StatsRecorder, random RandomSource, hub *Hub, logger *slog.Logger, normalizer float64) *BattleService {
	if logger == nil {
		logger = slog.Default()
	}
	if normalizer <= 0 {
		normalizer = defaultScoreNormalizer
	}
	return &BattleService{
		stats:      stats,
		random:     random,
		hub:        hub,
		logger:     logger,
		normalizer: normalizer,
	}
}

// PrepCombatant stages a meal for the next battle.
func (s *BattleService) PrepCombatant(meal models.Meal) error {
	for _, c := range s.combatants {
		if c.ID == meal.ID {
			return fmt.Errorf("%w: meal with id %d already in the combatant list", errs.ErrConflict, meal.ID)
		}
	}
	if len(s.combatants) >= maxCombatants {
		return fmt.Errorf("%w: combatant list already holds %d meals", errs.ErrCapacity, maxCombatants)
	}
	s.combatants = append(s.combatants, meal)
	return nil
}

// ClearCombatants empties the list. Clearing an empty list is a warning,
// not an error.
func (s *BattleService) ClearCombatants() {
	if len(s.combatants) == 0 {
		s.logger.Warn("clearing an empty combatant list")
	}
	s.combatants = nil
}

// Combatants returns a snapshot of the staged meals in insertion order.
func (s *BattleService) Combatants() []models.Meal {
	snapshot := make([]models.Meal, len(s.combatants))
	copy(snapshot, s.combatants)
	return snapshot
}

// BattleScore derives a meal's strength from its price and difficulty.
// Pure; easier meals score higher for the same price.
func (s *BattleService) BattleScore(meal models.Meal) float64 {
	return meal.Price*difficultyMultiplier(meal.Difficulty) - scorePenalty
}

func difficultyMultiplier(difficulty string) float64 {
	switch difficulty {
	case models.DifficultyLow:
		return 9
	case models.DifficultyMed:
		return 6
	default:
		return 3
	}
}

// Battle resolves a fight between the two staged combatants and returns the
// winner's name. The draw biases toward the higher score: the wider the
// score gap, the more likely the favorite takes it. The loser is dropped
// from the list and both outcomes are written back through the stats
// recorder; a failed write surfaces as an error but the list mutation is
// not rolled back.
func (s *BattleService) Battle(ctx context.Context) (string, error) {
	if len(s.combatants) != maxCombatants {
		return "", fmt.Errorf("%w: two combatants must be prepped for a battle", errs.ErrValidation)
	}

	first, second := s.combatants[0], s.combatants[1]
	scoreFirst := s.BattleScore(first)
	scoreSecond := s.BattleScore(second)

	delta := math.Abs(scoreFirst-scoreSecond) / s.normalizer

	draw, err := s.random.Draw(ctx)
	if err != nil {
		return "", err
	}

	// Ties resolve in favor of the first-prepped combatant.
	higher, lower := first, second
	higherScore, lowerScore := scoreFirst, scoreSecond
	if scoreSecond > scoreFirst {
		higher, lower = second, first
		higherScore, lowerScore = scoreSecond, scoreFirst
	}

	winner, loser := lower, higher
	winnerScore, loserScore := lowerScore, higherScore
	if draw < delta {
		winner, loser = higher, lower
		winnerScore, loserScore = higherScore, lowerScore
	}

	s.logger.Info("battle resolved",
		"winner", winner.Name,
		"loser", loser.Name,
		"delta", delta,
		"draw", draw,
	)

	s.combatants = []models.Meal{winner}

	if err := s.stats.UpdateMealStats(winner.ID, OutcomeWin); err != nil {
		return "", fmt.Errorf("recording win for %q: %w", winner.Name, err)
	}
	if err := s.stats.UpdateMealStats(loser.ID, OutcomeLoss); err != nil {
		return "", fmt.Errorf("recording loss for %q: %w", loser.Name, err)
	}

	if s.hub != nil {
		s.hub.Broadcast(BattleEvent{
			Type:        "battle_resolved",
			Winner:      winner.Name,
			Loser:       loser.Name,
			WinnerScore: winnerScore,
			LoserScore:  loserScore,
			FoughtAt:    time.Now().UTC(),
		})
	}

	return winner.Name, nil
}
