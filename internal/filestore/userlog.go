package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"expensetracker/internal/models"
)

func (s *Store) userLogPath(userID int64) string {
	return filepath.Join(s.basePath, "users", strconv.FormatInt(userID, 10)+".txt")
}

// AppendLog writes one line per transaction to the user's log:
//
//	date | amount | merchant | category | notes
func (s *Store) AppendLog(t models.Transaction) error {
	line := fmt.Sprintf("%s | %s | %s | %s | %s\n",
		t.Date, strconv.FormatFloat(t.Amount, 'f', -1, 64),
		oneLine(t.Merchant), oneLine(t.Category), oneLine(t.Notes))

	s.logMu.Lock()
	defer s.logMu.Unlock()

	f, err := os.OpenFile(s.userLogPath(t.UserID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open user log: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("write user log: %w", err)
	}
	return f.Close()
}

// ReadLog returns the raw contents of the user's log. A user with no log
// yet gets an empty result.
func (s *Store) ReadLog(userID int64) ([]byte, error) {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	data, err := os.ReadFile(s.userLogPath(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user log: %w", err)
	}
	return data, nil
}

// oneLine keeps a field from breaking the line-per-entry format
func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
