package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"expensetracker/internal/models"
)

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new user with a salted bcrypt hash of password
func (db *DB) CreateUser(username, email, password string, autoDetect bool) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	email = normalizeEmail(email)
	result, err := db.Exec(`
		INSERT INTO users (username, email, password_hash, auto_detect)
		VALUES (?, ?, ?, ?)
	`, strings.TrimSpace(username), email, string(hash), boolToInt(autoDetect))
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return db.GetUser(id)
}

// Authenticate returns the user when password matches the stored hash
func (db *DB) Authenticate(email, password string) (models.User, error) {
	u, err := db.scanUser(db.QueryRow(`
		SELECT id, username, email, password_hash, auto_detect, created_at
		FROM users WHERE email = ?
	`, normalizeEmail(email)))
	if errors.Is(err, ErrNotFound) {
		return u, ErrInvalidCredentials
	}
	if err != nil {
		return u, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (db *DB) GetUser(id int64) (models.User, error) {
	return db.scanUser(db.QueryRow(`
		SELECT id, username, email, password_hash, auto_detect, created_at
		FROM users WHERE id = ?
	`, id))
}

func (db *DB) UpdateUserSettings(id int64, username string, autoDetect bool) error {
	result, err := db.Exec(`
		UPDATE users SET username = ?, auto_detect = ? WHERE id = ?
	`, strings.TrimSpace(username), boolToInt(autoDetect), id)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	var autoDetect int
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &autoDetect, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return u, fmt.Errorf("query user: %w", err)
	}
	u.AutoDetect = autoDetect == 1
	return u, nil
}
