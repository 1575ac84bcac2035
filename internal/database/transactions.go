package database

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"expensetracker/internal/models"
)

const transactionColumns = `id, user_id, amount, merchant, category, date(date), envelope_id, notes, is_online_sale, created_at`

type scanner interface {
	Scan(dest ...any) error
}

// AddTransaction stores t and, when it references an envelope, adds
// |amount| to that envelope's spent total in the same SQL transaction.
func (db *DB) AddTransaction(t models.Transaction) (int64, error) {
	var id int64
	err := db.inTx(func(tx *sql.Tx) error {
		var err error
		id, err = insertTransaction(tx, t)
		return err
	})
	return id, err
}

func insertTransaction(tx *sql.Tx, t models.Transaction) (int64, error) {
	if _, err := time.Parse(models.DateLayout, t.Date); err != nil {
		return 0, fmt.Errorf("transaction date %q: %w", t.Date, err)
	}
	if strings.TrimSpace(t.Merchant) == "" {
		t.Merchant = models.UnknownMerchant
	}
	if t.Category == "" {
		t.Category = models.DefaultCategory
	}

	if t.EnvelopeID != nil {
		result, err := tx.Exec(`
			UPDATE envelopes SET spent = spent + ? WHERE id = ? AND user_id = ?
		`, math.Abs(t.Amount), *t.EnvelopeID, t.UserID)
		if err != nil {
			return 0, fmt.Errorf("update envelope spent: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return 0, fmt.Errorf("envelope %d: %w", *t.EnvelopeID, ErrNotFound)
		}
	}

	result, err := tx.Exec(`
		INSERT INTO transactions (user_id, amount, merchant, category, date, envelope_id, notes, is_online_sale)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.UserID, t.Amount, t.Merchant, t.Category, t.Date, t.EnvelopeID, t.Notes, boolToInt(t.IsOnlineSale))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return result.LastInsertId()
}

// ListTransactions returns a user's transactions, newest first. A limit of
// zero or less returns all of them.
func (db *DB) ListTransactions(userID int64, limit int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return db.queryTransactions(query, args...)
}

// ListOnlineSales returns the transactions flagged as online purchases
func (db *DB) ListOnlineSales(userID int64) ([]models.Transaction, error) {
	return db.queryTransactions(`
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND is_online_sale = 1
		ORDER BY date DESC, id DESC
	`, userID)
}

func (db *DB) ListEnvelopeTransactions(userID, envelopeID int64) ([]models.Transaction, error) {
	return db.queryTransactions(`
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND envelope_id = ?
		ORDER BY date DESC, id DESC
	`, userID, envelopeID)
}

func (db *DB) GetTransaction(userID, id int64) (models.Transaction, error) {
	t, err := scanTransaction(db.QueryRow(`
		SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return t, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return t, fmt.Errorf("query transaction: %w", err)
	}
	return t, nil
}

// DeleteTransaction removes a transaction and takes its amount back off
// the envelope it was charged to.
func (db *DB) DeleteTransaction(userID, id int64) error {
	return db.inTx(func(tx *sql.Tx) error {
		var amount float64
		var envelopeID sql.NullInt64
		err := tx.QueryRow(`
			SELECT amount, envelope_id FROM transactions WHERE id = ? AND user_id = ?
		`, id, userID).Scan(&amount, &envelopeID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("query transaction: %w", err)
		}

		if envelopeID.Valid {
			if _, err := tx.Exec(`
				UPDATE envelopes SET spent = MAX(spent - ?, 0) WHERE id = ? AND user_id = ?
			`, math.Abs(amount), envelopeID.Int64, userID); err != nil {
				return fmt.Errorf("update envelope spent: %w", err)
			}
		}

		if _, err := tx.Exec(`DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return nil
	})
}

// BalanceSummary totals income and expenses for a user
func (db *DB) BalanceSummary(userID int64) (models.BalanceSummary, error) {
	var s models.BalanceSummary
	err := db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0)
		FROM transactions WHERE user_id = ?
	`, userID).Scan(&s.Income, &s.Expenses)
	if err != nil {
		return s, fmt.Errorf("query balance: %w", err)
	}
	s.Balance = s.Income - s.Expenses
	return s, nil
}

func (db *DB) queryTransactions(query string, args ...any) ([]models.Transaction, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func scanTransaction(s scanner) (models.Transaction, error) {
	var t models.Transaction
	var envelopeID sql.NullInt64
	var online int
	err := s.Scan(&t.ID, &t.UserID, &t.Amount, &t.Merchant, &t.Category, &t.Date, &envelopeID, &t.Notes, &online, &t.CreatedAt)
	if err != nil {
		return t, err
	}
	if envelopeID.Valid {
		t.EnvelopeID = &envelopeID.Int64
	}
	t.IsOnlineSale = online == 1
	return t, nil
}
