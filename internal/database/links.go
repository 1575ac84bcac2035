package database

import (
	"database/sql"
	"fmt"

	"expensetracker/internal/models"
)

func (db *DB) CreateTrackedLink(l models.TrackedLink) error {
	_, err := db.Exec(`
		INSERT INTO link_tracking (tracking_id, user_id, merchant, title, amount, target_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`, l.TrackingID, l.UserID, l.Merchant, l.Title, l.Amount, l.TargetURL)
	if err != nil {
		return fmt.Errorf("insert tracked link: %w", err)
	}
	return nil
}

func (db *DB) GetTrackedLink(trackingID string) (models.TrackedLink, error) {
	var l models.TrackedLink
	var amount sql.NullFloat64
	var clicked, accepted int
	err := db.QueryRow(`
		SELECT tracking_id, user_id, merchant, title, amount, target_url, clicked, accepted, created_at
		FROM link_tracking WHERE tracking_id = ?
	`, trackingID).Scan(&l.TrackingID, &l.UserID, &l.Merchant, &l.Title, &amount, &l.TargetURL, &clicked, &accepted, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return l, fmt.Errorf("tracked link %s: %w", trackingID, ErrNotFound)
	}
	if err != nil {
		return l, fmt.Errorf("query tracked link: %w", err)
	}
	if amount.Valid {
		l.Amount = &amount.Float64
	}
	l.Clicked = clicked == 1
	l.Accepted = accepted == 1
	return l, nil
}

// RecordClick logs a visit to a tracked link and flags the link as clicked
func (db *DB) RecordClick(trackingID string, userID int64, userAgent, referrer string) error {
	return db.inTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(`UPDATE link_tracking SET clicked = 1 WHERE tracking_id = ?`, trackingID)
		if err != nil {
			return fmt.Errorf("update tracked link: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("tracked link %s: %w", trackingID, ErrNotFound)
		}
		if _, err := tx.Exec(`
			INSERT INTO link_clicks (tracking_id, user_id, user_agent, referrer) VALUES (?, ?, ?, ?)
		`, trackingID, userID, userAgent, referrer); err != nil {
			return fmt.Errorf("insert link click: %w", err)
		}
		return nil
	})
}

func (db *DB) MarkLinkAccepted(trackingID string) error {
	result, err := db.Exec(`UPDATE link_tracking SET accepted = 1 WHERE tracking_id = ?`, trackingID)
	if err != nil {
		return fmt.Errorf("update tracked link: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("tracked link %s: %w", trackingID, ErrNotFound)
	}
	return nil
}

// ListUserClicks returns a user's clicks joined with the link they hit, newest first
func (db *DB) ListUserClicks(userID int64, limit int) ([]models.LinkClick, error) {
	query := `
		SELECT c.id, c.tracking_id, c.user_id, c.clicked_at, c.user_agent, c.referrer,
			l.merchant, l.title, l.amount, l.accepted
		FROM link_clicks c
		JOIN link_tracking l ON l.tracking_id = c.tracking_id
		WHERE c.user_id = ?
		ORDER BY c.clicked_at DESC, c.id DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query link clicks: %w", err)
	}
	defer rows.Close()

	var clicks []models.LinkClick
	for rows.Next() {
		var c models.LinkClick
		var amount sql.NullFloat64
		var accepted int
		if err := rows.Scan(&c.ID, &c.TrackingID, &c.UserID, &c.ClickedAt, &c.UserAgent, &c.Referrer,
			&c.Merchant, &c.Title, &amount, &accepted); err != nil {
			return nil, fmt.Errorf("scan link click: %w", err)
		}
		if amount.Valid {
			v := amount.Float64
			c.Amount = &v
		}
		c.Accepted = accepted == 1
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

// ClickStats summarises how a user's tracked links have been used
func (db *DB) ClickStats(userID int64) (models.ClickStats, error) {
	var s models.ClickStats
	err := db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM link_tracking WHERE user_id = ?),
			(SELECT COUNT(*) FROM link_clicks WHERE user_id = ?),
			(SELECT COUNT(*) FROM link_tracking WHERE user_id = ? AND accepted = 1),
			(SELECT COUNT(*) FROM link_tracking WHERE user_id = ? AND clicked = 1)
	`, userID, userID, userID, userID).Scan(&s.TotalLinks, &s.TotalClicks, &s.AcceptedLinks, &s.ClickedLinks)
	if err != nil {
		return s, fmt.Errorf("query click stats: %w", err)
	}
	if s.TotalLinks > 0 {
		s.ClickRate = float64(s.ClickedLinks) / float64(s.TotalLinks) * 100
	}
	return s, nil
}
