package database

import (
	"database/sql"
	"fmt"
	"strings"

	"expensetracker/internal/models"
)

// AvailableFunds is the balance not yet set aside: income minus expenses,
// minus what envelopes still have left to spend, minus what goals hold.
func (db *DB) AvailableFunds(userID int64) (float64, error) {
	return availableFunds(db.DB, userID)
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func availableFunds(q querier, userID int64) (float64, error) {
	var balance, reserved, saved float64
	err := q.QueryRow(`
		SELECT
			(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = ?),
			(SELECT COALESCE(SUM(MAX(allocated - spent, 0)), 0) FROM envelopes WHERE user_id = ?),
			(SELECT COALESCE(SUM(current_amount), 0) FROM goals WHERE user_id = ?)
	`, userID, userID, userID).Scan(&balance, &reserved, &saved)
	if err != nil {
		return 0, fmt.Errorf("query available funds: %w", err)
	}
	return balance - reserved - saved, nil
}

// CreateEnvelope creates an envelope. A non-zero starting allocation is
// checked against available funds like any other allocation.
func (db *DB) CreateEnvelope(userID int64, name string, allocated float64) (models.Envelope, error) {
	if allocated < 0 {
		return models.Envelope{}, ErrInvalidAmount
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Envelope{}, fmt.Errorf("envelope: %w", ErrInvalidName)
	}

	var id int64
	err := db.inTx(func(tx *sql.Tx) error {
		if allocated > 0 {
			available, err := availableFunds(tx, userID)
			if err != nil {
				return err
			}
			if allocated > available {
				return fmt.Errorf("allocate %.2f with %.2f available: %w", allocated, available, ErrInsufficientFunds)
			}
		}
		result, err := tx.Exec(`
			INSERT INTO envelopes (user_id, name, allocated) VALUES (?, ?, ?)
		`, userID, name, allocated)
		if err != nil {
			return fmt.Errorf("insert envelope: %w", err)
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return models.Envelope{}, err
	}
	return db.GetEnvelope(userID, id)
}

func (db *DB) ListEnvelopes(userID int64) ([]models.Envelope, error) {
	rows, err := db.Query(`
		SELECT id, user_id, name, allocated, spent, created_at
		FROM envelopes WHERE user_id = ?
		ORDER BY name, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query envelopes: %w", err)
	}
	defer rows.Close()

	var envelopes []models.Envelope
	for rows.Next() {
		var e models.Envelope
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Allocated, &e.Spent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan envelope: %w", err)
		}
		envelopes = append(envelopes, e)
	}
	return envelopes, rows.Err()
}

func (db *DB) GetEnvelope(userID, id int64) (models.Envelope, error) {
	return getEnvelope(db.DB, userID, id)
}

func getEnvelope(q querier, userID, id int64) (models.Envelope, error) {
	var e models.Envelope
	err := q.QueryRow(`
		SELECT id, user_id, name, allocated, spent, created_at
		FROM envelopes WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&e.ID, &e.UserID, &e.Name, &e.Allocated, &e.Spent, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return e, fmt.Errorf("envelope %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return e, fmt.Errorf("query envelope: %w", err)
	}
	return e, nil
}

// AllocateToEnvelope moves amount of available funds into an envelope
func (db *DB) AllocateToEnvelope(userID, envelopeID int64, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return db.inTx(func(tx *sql.Tx) error {
		if _, err := getEnvelope(tx, userID, envelopeID); err != nil {
			return err
		}
		available, err := availableFunds(tx, userID)
		if err != nil {
			return err
		}
		if amount > available {
			return fmt.Errorf("allocate %.2f with %.2f available: %w", amount, available, ErrInsufficientFunds)
		}
		if _, err := tx.Exec(`
			UPDATE envelopes SET allocated = allocated + ? WHERE id = ? AND user_id = ?
		`, amount, envelopeID, userID); err != nil {
			return fmt.Errorf("allocate envelope: %w", err)
		}
		return nil
	})
}

// TransferEnvelopeFunds moves allocation between two of a user's envelopes.
// The source must hold at least amount.
func (db *DB) TransferEnvelopeFunds(userID, fromID, toID int64, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return fmt.Errorf("transfer to the same envelope")
	}
	return db.inTx(func(tx *sql.Tx) error {
		from, err := getEnvelope(tx, userID, fromID)
		if err != nil {
			return err
		}
		if _, err := getEnvelope(tx, userID, toID); err != nil {
			return err
		}
		if from.Allocated < amount {
			return fmt.Errorf("transfer %.2f from %q holding %.2f: %w", amount, from.Name, from.Allocated, ErrInsufficientFunds)
		}
		if _, err := tx.Exec(`UPDATE envelopes SET allocated = allocated - ? WHERE id = ?`, amount, fromID); err != nil {
			return fmt.Errorf("debit envelope: %w", err)
		}
		if _, err := tx.Exec(`UPDATE envelopes SET allocated = allocated + ? WHERE id = ?`, amount, toID); err != nil {
			return fmt.Errorf("credit envelope: %w", err)
		}
		return nil
	})
}
