package database

import (
	"fmt"
	"strings"

	"expensetracker/internal/models"
)

func (db *DB) CreateOffer(o models.Offer) (int64, error) {
	if o.DiscountPercent <= 0 || o.DiscountPercent > 100 {
		return 0, fmt.Errorf("discount %.2f: %w", o.DiscountPercent, ErrInvalidAmount)
	}
	if strings.TrimSpace(o.Merchant) == "" {
		return 0, fmt.Errorf("offer merchant is required")
	}
	result, err := db.Exec(`
		INSERT INTO offers (user_id, merchant, discount_percent, description, expiry)
		VALUES (?, ?, ?, ?, ?)
	`, o.UserID, o.Merchant, o.DiscountPercent, o.Description, o.Expiry)
	if err != nil {
		return 0, fmt.Errorf("insert offer: %w", err)
	}
	return result.LastInsertId()
}

// ListOffers returns a user's offers; activeOnly drops deactivated ones.
// Expiry is left to the caller.
func (db *DB) ListOffers(userID int64, activeOnly bool) ([]models.Offer, error) {
	query := `
		SELECT id, user_id, merchant, discount_percent, description, expiry, active, created_at
		FROM offers WHERE user_id = ?`
	if activeOnly {
		query += " AND active = 1"
	}
	query += " ORDER BY merchant, discount_percent DESC"

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		var active int
		if err := rows.Scan(&o.ID, &o.UserID, &o.Merchant, &o.DiscountPercent, &o.Description, &o.Expiry, &active, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		o.Active = active == 1
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (db *DB) DeactivateOffer(userID, id int64) error {
	result, err := db.Exec(`UPDATE offers SET active = 0 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deactivate offer: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("offer %d: %w", id, ErrNotFound)
	}
	return nil
}
