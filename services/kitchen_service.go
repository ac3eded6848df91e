package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"mealarena/errs"
	"mealarena/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Battle outcomes accepted by UpdateMealStats.
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
)

// Leaderboard sort keys.
const (
	SortByWins   = "wins"
	SortByWinPct = "win_pct"
)

const leaderboardTTL = 30 * time.Second

// KitchenService owns the meals table: CRUD, soft deletes, battle stats and
// the leaderboard view. The reset DDL path is injected at construction so
// the service never consults the environment itself.
type KitchenService struct {
	db         *gorm.DB
	cache      *redis.Client
	schemaPath string
}

func NewKitchenService(db *gorm.DB, cache *redis.Client, schemaPath string) *KitchenService {
	return &KitchenService{
		db:         db,
		cache:      cache,
		schemaPath: schemaPath,
	}
}

type LeaderboardEntry struct {
	ID         uint    `json:"id"`
	Name       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
	Battles    int     `json:"battles"`
	Wins       int     `json:"wins"`
	WinPct     float64 `json:"win_pct"`
}

// CreateMeal validates and inserts a new meal with zeroed battle counters.
// Names must be unique among non-deleted meals; a deleted meal frees its
// name for reuse.
func (s *KitchenService) CreateMeal(name, cuisine string, price float64, difficulty string) (*models.Meal, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: meal name must not be empty", errs.ErrValidation)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: invalid price %.2f, price must be a positive number", errs.ErrValidation, price)
	}
	if !models.ValidDifficulty(difficulty) {
		return nil, fmt.Errorf("%w: invalid difficulty %q, must be LOW, MED or HIGH", errs.ErrValidation, difficulty)
	}

	var existing models.Meal
	err := s.db.Where("meal = ? AND deleted = ?", name, false).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: meal with name %q already exists", errs.ErrConflict, name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	meal := &models.Meal{
		Name:       name,
		Cuisine:    cuisine,
		Price:      price,
		Difficulty: difficulty,
	}
	if err := s.db.Create(meal).Error; err != nil {
		return nil, err
	}

	s.invalidateLeaderboard()
	return meal, nil
}

// GetMealByID returns the live meal with the given id. Deleted meals are
// reported as not found, with a message that notes the deletion.
func (s *KitchenService) GetMealByID(id uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.First(&meal, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: meal with id %d not found", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if meal.Deleted {
		return nil, fmt.Errorf("%w: meal with id %d has been deleted", errs.ErrNotFound, id)
	}
	return &meal, nil
}

// GetMealByName is GetMealByID keyed by name.
func (s *KitchenService) GetMealByName(name string) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.Where("meal = ? AND deleted = ?", name, false).First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Distinguish a name that was soft-deleted from one never seen.
		var count int64
		if err := s.db.Model(&models.Meal{}).Where("meal = ?", name).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: meal with name %q has been deleted", errs.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: meal with name %q not found", errs.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

// DeleteMeal soft-deletes a meal. The flag is never cleared again through
// this API; deleting twice is an error.
func (s *KitchenService) DeleteMeal(id uint) error {
	var meal models.Meal
	err := s.db.First(&meal, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: meal with id %d not found", errs.ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	if meal.Deleted {
		return fmt.Errorf("%w: meal with id %d has already been deleted", errs.ErrAlreadyDeleted, id)
	}

	if err := s.db.Model(&models.Meal{}).Where("id = ?", id).Update("deleted", true).Error; err != nil {
		return err
	}

	s.invalidateLeaderboard()
	return nil
}

// ClearMeals drops and recreates the meals table from the injected DDL
// script. Destructive and unconditional; soft delete is the per-meal
// operation.
func (s *KitchenService) ClearMeals() error {
	script, err := os.ReadFile(s.schemaPath)
	if err != nil {
		return fmt.Errorf("reading meals table schema: %w", err)
	}

	// Drivers disagree on multi-statement Exec, so run one at a time.
	for _, stmt := range strings.Split(string(script), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("resetting meals table: %w", err)
		}
	}

	s.invalidateLeaderboard()
	return nil
}

// Leaderboard lists non-deleted meals that fought at least once, decorated
// with win_pct and stable-sorted descending by the requested key. Results
// are served from redis when a fresh copy exists.
func (s *KitchenService) Leaderboard(sortBy string) ([]LeaderboardEntry, error) {
	if sortBy != SortByWins && sortBy != SortByWinPct {
		return nil, fmt.Errorf("%w: invalid sort_by %q, must be %q or %q", errs.ErrValidation, sortBy, SortByWins, SortByWinPct)
	}

	if entries, ok := s.cachedLeaderboard(sortBy); ok {
		return entries, nil
	}

	var meals []models.Meal
	if err := s.db.Where("deleted = ? AND battles > 0", false).Order("id").Find(&meals).Error; err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(meals))
	for _, meal := range meals {
		entries = append(entries, LeaderboardEntry{
			ID:         meal.ID,
			Name:       meal.Name,
			Cuisine:    meal.Cuisine,
			Price:      meal.Price,
			Difficulty: meal.Difficulty,
			Battles:    meal.Battles,
			Wins:       meal.Wins,
			WinPct:     math.Round(1000*float64(meal.Wins)/float64(meal.Battles)) / 10,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if sortBy == SortByWins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].WinPct > entries[j].WinPct
	})

	s.storeLeaderboard(sortBy, entries)
	return entries, nil
}

// UpdateMealStats records a battle outcome: battles always increments, wins
// only on a win. The outcome is validated before anything is written.
func (s *KitchenService) UpdateMealStats(id uint, outcome string) error {
	if outcome != OutcomeWin && outcome != OutcomeLoss {
		return fmt.Errorf("%w: invalid outcome %q, must be %q or %q", errs.ErrValidation, outcome, OutcomeWin, OutcomeLoss)
	}

	var meal models.Meal
	err := s.db.First(&meal, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: meal with id %d not found", errs.ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	if meal.Deleted {
		return fmt.Errorf("%w: meal with id %d has already been deleted", errs.ErrAlreadyDeleted, id)
	}

	updates := map[string]interface{}{"battles": gorm.Expr("battles + 1")}
	if outcome == OutcomeWin {
		updates["wins"] = gorm.Expr("wins + 1")
	}
	if err := s.db.Model(&models.Meal{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return err
	}

	s.invalidateLeaderboard()
	return nil
}

func leaderboardKey(sortBy string) string {
	return "leaderboard:" + sortBy
}

func (s *KitchenService) cachedLeaderboard(sortBy string) ([]LeaderboardEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(context.Background(), leaderboardKey(sortBy)).Result()
	if err != nil {
		return nil, false
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *KitchenService) storeLeaderboard(sortBy string, entries []LeaderboardEntry) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	s.cache.Set(context.Background(), leaderboardKey(sortBy), data, leaderboardTTL)
}

func (s *KitchenService) invalidateLeaderboard() {
	if s.cache == nil {
		return
	}
	s.cache.Del(context.Background(), leaderboardKey(SortByWins), leaderboardKey(SortByWinPct))
}
