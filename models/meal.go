package models

// Difficulty levels a meal can be prepared at.
const (
	DifficultyLow  = "LOW"
	DifficultyMed  = "MED"
	DifficultyHigh = "HIGH"
)

type Meal struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	Name       string  `json:"meal" gorm:"column:meal;not null"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price" gorm:"not null"`
	Difficulty string  `json:"difficulty" gorm:"not null"`
	Battles    int     `json:"battles" gorm:"not null;default:0"`
	Wins       int     `json:"wins" gorm:"not null;default:0"`
	Deleted    bool    `json:"-" gorm:"not null;default:false"`
}

// ValidDifficulty reports whether d is one of the three known levels.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyLow, DifficultyMed, DifficultyHigh:
		return true
	}
	return false
}
