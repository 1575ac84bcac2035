package database

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"expensetracker/internal/models"
)

const detectedColumns = `id, user_id, amount, merchant, category, date, confidence, is_online, tracking_id, created_at`

// StoreDetected stages a batch of imported rows for review
func (db *DB) StoreDetected(userID int64, items []models.DetectedTransaction) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	err := db.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO detected_transactions (user_id, amount, merchant, category, date, confidence, is_online, tracking_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare detected insert: %w", err)
		}
		defer stmt.Close()

		for _, d := range items {
			if d.Merchant == "" {
				d.Merchant = models.UnknownMerchant
			}
			if d.Category == "" {
				d.Category = models.DefaultCategory
			}
			if _, err := stmt.Exec(userID, d.Amount, d.Merchant, d.Category, d.Date,
				d.Confidence, boolToInt(d.IsOnline), d.TrackingID); err != nil {
				return fmt.Errorf("insert detected transaction: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// CreateDetectedFromLink stages a purchase made through a tracked link.
// The amount is always recorded as an expense.
func (db *DB) CreateDetectedFromLink(userID int64, link models.TrackedLink, amount float64, confidence string, now time.Time) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO detected_transactions (user_id, amount, merchant, category, date, confidence, is_online, tracking_id)
		VALUES (?, ?, ?, 'Shopping', ?, ?, 1, ?)
	`, userID, -math.Abs(amount), link.Merchant, now.Format(models.DateLayout), confidence, link.TrackingID)
	if err != nil {
		return 0, fmt.Errorf("insert detected transaction: %w", err)
	}
	return result.LastInsertId()
}

func (db *DB) ListDetected(userID int64) ([]models.DetectedTransaction, error) {
	rows, err := db.Query(`
		SELECT `+detectedColumns+` FROM detected_transactions
		WHERE user_id = ? ORDER BY date DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query detected transactions: %w", err)
	}
	defer rows.Close()

	var items []models.DetectedTransaction
	for rows.Next() {
		d, err := scanDetected(rows)
		if err != nil {
			return nil, fmt.Errorf("scan detected transaction: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (db *DB) GetDetected(userID, id int64) (models.DetectedTransaction, error) {
	d, err := scanDetected(db.QueryRow(`
		SELECT `+detectedColumns+` FROM detected_transactions WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return d, fmt.Errorf("detected transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return d, fmt.Errorf("query detected transaction: %w", err)
	}
	return d, nil
}

// AcceptDetected promotes a staged row to a real transaction and removes it
// from the queue. A non-empty category overrides the detected one.
func (db *DB) AcceptDetected(userID, id int64, envelopeID *int64, category string) (models.Transaction, error) {
	var t models.Transaction
	err := db.inTx(func(tx *sql.Tx) error {
		d, err := scanDetected(tx.QueryRow(`
			SELECT `+detectedColumns+` FROM detected_transactions WHERE id = ? AND user_id = ?
		`, id, userID))
		if err == sql.ErrNoRows {
			return fmt.Errorf("detected transaction %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("query detected transaction: %w", err)
		}

		t = d.Promote()
		t.EnvelopeID = envelopeID
		if category != "" {
			t.Category = category
		}
		t.ID, err = insertTransaction(tx, t)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM detected_transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete detected transaction: %w", err)
		}
		return nil
	})
	return t, err
}

// RejectDetected discards a staged row
func (db *DB) RejectDetected(userID, id int64) error {
	result, err := db.Exec(`DELETE FROM detected_transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete detected transaction: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("detected transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanDetected(s scanner) (models.DetectedTransaction, error) {
	var d models.DetectedTransaction
	var online int
	err := s.Scan(&d.ID, &d.UserID, &d.Amount, &d.Merchant, &d.Category, &d.Date,
		&d.Confidence, &online, &d.TrackingID, &d.CreatedAt)
	d.IsOnline = online == 1
	return d, err
}
