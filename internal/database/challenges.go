package database

import (
	"database/sql"
	"fmt"

	"expensetracker/internal/models"
)

const challengeColumns = `id, user_id, challenge_id, outcome, started_at, finished_at, points, created_at`

// StartChallenge records a new attempt at challengeID. A user can only have
// one active attempt per challenge.
func (db *DB) StartChallenge(userID int64, challengeID, startedAt string) (models.Challenge, error) {
	var c models.Challenge
	err := db.inTx(func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRow(`
			SELECT COUNT(*) FROM challenges WHERE user_id = ? AND challenge_id = ? AND outcome = ?
		`, userID, challengeID, models.ChallengeActive).Scan(&n); err != nil {
			return fmt.Errorf("query active challenge: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("challenge %s: %w", challengeID, ErrChallengeActive)
		}

		result, err := tx.Exec(`
			INSERT INTO challenges (user_id, challenge_id, outcome, started_at) VALUES (?, ?, ?, ?)
		`, userID, challengeID, models.ChallengeActive, startedAt)
		if err != nil {
			return fmt.Errorf("insert challenge: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("challenge id: %w", err)
		}
		c, err = scanChallenge(tx.QueryRow(`SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id))
		return err
	})
	return c, err
}

func (db *DB) ListChallenges(userID int64) ([]models.Challenge, error) {
	rows, err := db.Query(`
		SELECT `+challengeColumns+`
		FROM challenges WHERE user_id = ?
		ORDER BY started_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query challenges: %w", err)
	}
	defer rows.Close()

	var list []models.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// FinishChallenge closes an active attempt with the given outcome and the
// points it earned.
func (db *DB) FinishChallenge(userID, id int64, outcome, finishedAt string, points int) error {
	result, err := db.Exec(`
		UPDATE challenges SET outcome = ?, finished_at = ?, points = ?
		WHERE id = ? AND user_id = ? AND outcome = ?
	`, outcome, finishedAt, points, id, userID, models.ChallengeActive)
	if err != nil {
		return fmt.Errorf("finish challenge: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("active challenge %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanChallenge(s scanner) (models.Challenge, error) {
	var c models.Challenge
	if err := s.Scan(&c.ID, &c.UserID, &c.ChallengeID, &c.Outcome, &c.StartedAt, &c.FinishedAt, &c.Points, &c.CreatedAt); err != nil {
		return c, fmt.Errorf("scan challenge: %w", err)
	}
	return c, nil
}
