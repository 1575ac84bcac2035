package database

import (
	"database/sql"
	"fmt"
	"strings"

	"expensetracker/internal/models"
)

func (db *DB) CreateGoal(userID int64, name string, target float64, deadline string) (models.Goal, error) {
	if target <= 0 {
		return models.Goal{}, ErrInvalidAmount
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Goal{}, fmt.Errorf("goal: %w", ErrInvalidName)
	}

	result, err := db.Exec(`
		INSERT INTO goals (user_id, name, target_amount, deadline) VALUES (?, ?, ?, ?)
	`, userID, name, target, deadline)
	if err != nil {
		return models.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Goal{}, fmt.Errorf("goal id: %w", err)
	}
	return db.GetGoal(userID, id)
}

func (db *DB) ListGoals(userID int64) ([]models.Goal, error) {
	rows, err := db.Query(`
		SELECT id, user_id, name, target_amount, current_amount, deadline, created_at
		FROM goals WHERE user_id = ?
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Deadline, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (db *DB) GetGoal(userID, id int64) (models.Goal, error) {
	return getGoal(db.DB, userID, id)
}

func getGoal(q querier, userID, id int64) (models.Goal, error) {
	var g models.Goal
	err := q.QueryRow(`
		SELECT id, user_id, name, target_amount, current_amount, deadline, created_at
		FROM goals WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Deadline, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return g, fmt.Errorf("goal %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return g, fmt.Errorf("query goal: %w", err)
	}
	return g, nil
}

// ContributeToGoal adds amount of available funds to a goal and returns
// the updated goal.
func (db *DB) ContributeToGoal(userID, goalID int64, amount float64) (models.Goal, error) {
	if amount <= 0 {
		return models.Goal{}, ErrInvalidAmount
	}
	var g models.Goal
	err := db.inTx(func(tx *sql.Tx) error {
		if _, err := getGoal(tx, userID, goalID); err != nil {
			return err
		}
		available, err := availableFunds(tx, userID)
		if err != nil {
			return err
		}
		if amount > available {
			return fmt.Errorf("contribute %.2f with %.2f available: %w", amount, available, ErrInsufficientFunds)
		}
		if _, err := tx.Exec(`
			UPDATE goals SET current_amount = current_amount + ? WHERE id = ? AND user_id = ?
		`, amount, goalID, userID); err != nil {
			return fmt.Errorf("contribute to goal: %w", err)
		}
		g, err = getGoal(tx, userID, goalID)
		return err
	})
	return g, err
}

func (db *DB) DeleteGoal(userID, goalID int64) error {
	result, err := db.Exec(`DELETE FROM goals WHERE id = ? AND user_id = ?`, goalID, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("goal %d: %w", goalID, ErrNotFound)
	}
	return nil
}
