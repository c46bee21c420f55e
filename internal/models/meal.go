// internal/models/meal.go
package models

import (
	"time"
)

// Meal is a logged food analysis.
type Meal struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
	Analysis    FoodAnalysis `json:"analysis"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Source      MealSource   `json:"source"`
}

type MealSource string

const (
	SourceImage       MealSource = "ai_image"
	SourceDescription MealSource = "ai_description"
	SourceBarcode     MealSource = "barcode"
)

// MealQuery filters logged meals. Dates are YYYY-MM-DD and inclusive.
type MealQuery struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}
