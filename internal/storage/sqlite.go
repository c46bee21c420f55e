// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"nutrilens/internal/models"
)

// timestamps are stored as fixed-width UTC text so they sort and compare
// lexically and work with SQLite's DATE()
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrMealNotFound = errors.New("meal not found")

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time keeps SQLite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS meals (
        id TEXT PRIMARY KEY,
        description TEXT NOT NULL,
        timestamp TEXT NOT NULL,
        food_name TEXT NOT NULL,
        calories INTEGER NOT NULL,
        protein REAL NOT NULL,
        carbs REAL NOT NULL,
        fat REAL NOT NULL,
        health_score INTEGER NOT NULL,
        recommendation TEXT NOT NULL,
        detailed_facts TEXT NOT NULL,
        source TEXT NOT NULL,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS meal_warnings (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        meal_id TEXT NOT NULL,
        warning TEXT NOT NULL,
        FOREIGN KEY (meal_id) REFERENCES meals(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_meals_timestamp ON meals(timestamp);
    CREATE INDEX IF NOT EXISTS idx_meal_warnings_meal_id ON meal_warnings(meal_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) SaveMeal(meal *models.Meal) error {
	facts, err := json.Marshal(meal.Analysis.DetailedFacts)
	if err != nil {
		return fmt.Errorf("failed to encode nutrition facts: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	a := meal.Analysis
	mealQuery := `
        INSERT INTO meals (id, description, timestamp, food_name, calories, protein, carbs, fat,
            health_score, recommendation, detailed_facts, source, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = tx.Exec(mealQuery,
		meal.ID, meal.Description, formatTime(meal.Timestamp), a.FoodName, a.EstimatedCalories,
		a.Protein, a.Carbs, a.Fat, a.HealthScore, a.Recommendation, string(facts),
		string(meal.Source), formatTime(meal.CreatedAt), formatTime(meal.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}

	for _, warning := range a.Warnings {
		_, err = tx.Exec(`INSERT INTO meal_warnings (meal_id, warning) VALUES (?, ?)`, meal.ID, warning)
		if err != nil {
			return fmt.Errorf("failed to insert warning: %w", err)
		}
	}

	return tx.Commit()
}

const mealColumns = `id, description, timestamp, food_name, calories, protein, carbs, fat,
    health_score, recommendation, detailed_facts, source, created_at, updated_at`

// GetMeals returns logged meals newest first.
func (s *SQLiteStorage) GetMeals(q models.MealQuery) ([]*models.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE 1=1`
	args := []interface{}{}

	if q.StartDate != "" {
		query += " AND DATE(timestamp) >= ?"
		args = append(args, q.StartDate)
	}
	if q.EndDate != "" {
		query += " AND DATE(timestamp) <= ?"
		args = append(args, q.EndDate)
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, q.Limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}

	meals := []*models.Meal{}
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate meals: %w", err)
	}
	rows.Close()

	// warnings are loaded after the cursor is closed; the pool holds a single connection
	for _, meal := range meals {
		if err := s.loadWarningsForMeal(meal); err != nil {
			return nil, fmt.Errorf("failed to load warnings for meal %s: %w", meal.ID, err)
		}
	}

	return meals, nil
}

func (s *SQLiteStorage) GetMeal(id string) (*models.Meal, error) {
	row := s.db.QueryRow(`SELECT `+mealColumns+` FROM meals WHERE id = ?`, id)
	meal, err := scanMeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMealNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadWarningsForMeal(meal); err != nil {
		return nil, fmt.Errorf("failed to load warnings for meal %s: %w", meal.ID, err)
	}
	return meal, nil
}

func (s *SQLiteStorage) DeleteMeal(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// foreign keys are off by default in SQLite, so children go first
	if _, err := tx.Exec(`DELETE FROM meal_warnings WHERE meal_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete warnings: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	if n == 0 {
		return ErrMealNotFound
	}

	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeal(row scanner) (*models.Meal, error) {
	meal := &models.Meal{}
	a := &meal.Analysis
	var timestampStr, createdAtStr, updatedAtStr, factsStr, sourceStr string

	err := row.Scan(
		&meal.ID, &meal.Description, &timestampStr, &a.FoodName, &a.EstimatedCalories,
		&a.Protein, &a.Carbs, &a.Fat, &a.HealthScore, &a.Recommendation, &factsStr,
		&sourceStr, &createdAtStr, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan meal: %w", err)
	}

	if meal.Timestamp, err = time.Parse(timeLayout, timestampStr); err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	if meal.CreatedAt, err = time.Parse(timeLayout, createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if meal.UpdatedAt, err = time.Parse(timeLayout, updatedAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(factsStr), &a.DetailedFacts); err != nil {
		return nil, fmt.Errorf("failed to decode nutrition facts: %w", err)
	}

	meal.Source = models.MealSource(sourceStr)
	a.Warnings = []string{}
	return meal, nil
}

func (s *SQLiteStorage) loadWarningsForMeal(meal *models.Meal) error {
	rows, err := s.db.Query(`SELECT warning FROM meal_warnings WHERE meal_id = ? ORDER BY id`, meal.ID)
	if err != nil {
		return fmt.Errorf("failed to query warnings: %w", err)
	}
	defer rows.Close()

	warnings := []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return fmt.Errorf("failed to scan warning: %w", err)
		}
		warnings = append(warnings, w)
	}

	meal.Analysis.Warnings = warnings
	return rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
