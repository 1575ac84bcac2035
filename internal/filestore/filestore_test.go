package filestore

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"expensetracker/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestUploadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	name, err := s.SaveUpload(7, "statement.CSV", strings.NewReader("date,amount\n"))
	if err != nil {
		t.Fatalf("SaveUpload() error = %v", err)
	}
	if filepath.Ext(name) != ".CSV" || !strings.HasPrefix(name, filepath.Join("uploads", "7")) {
		t.Errorf("SaveUpload() name = %q", name)
	}

	f, err := s.Get(name)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	data, _ := io.ReadAll(f)
	f.Close()
	if string(data) != "date,amount\n" {
		t.Errorf("Get() content = %q", data)
	}

	if err := s.Delete(name); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(name); err != nil {
		t.Errorf("Delete() of missing file error = %v", err)
	}
}

func TestFullPathStaysInside(t *testing.T) {
	s := newTestStore(t)
	got := s.FullPath("../../etc/passwd")
	if !strings.HasPrefix(got, s.basePath) {
		t.Errorf("FullPath() = %q escapes %q", got, s.basePath)
	}
}

func TestAppendLogConcurrent(t *testing.T) {
	s := newTestStore(t)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.AppendLog(models.Transaction{
				UserID:   1,
				Date:     "2024-01-02",
				Amount:   -float64(i),
				Merchant: "Shop\nName",
				Category: "Other",
				Notes:    fmt.Sprintf("n%d", i),
			})
			if err != nil {
				t.Errorf("AppendLog() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	data, err := s.ReadLog(1)
	if err != nil {
		t.Fatalf("ReadLog() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != n {
		t.Fatalf("log has %d lines, want %d", len(lines), n)
	}
	for _, line := range lines {
		if parts := strings.Split(line, " | "); len(parts) != 5 {
			t.Errorf("malformed line %q", line)
		}
	}

	if empty, err := s.ReadLog(99); err != nil || empty != nil {
		t.Errorf("ReadLog(no log) = %q, %v", empty, err)
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestStore(t)
	env := int64(3)
	txns := []models.Transaction{
		{ID: 1, Date: "2024-01-02", Amount: -12.5, Merchant: "Cafe, Main St", Category: "Food & Dining", EnvelopeID: &env},
		{ID: 2, Date: "2024-01-03", Amount: 100, Merchant: "Employer", Category: "Income"},
	}

	name, err := s.ExportCSV(4, txns, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if filepath.Base(name) != "export_4_20240201.csv" {
		t.Errorf("ExportCSV() name = %q", name)
	}

	f, err := os.Open(s.FullPath(name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("export has %d records, want 3", len(records))
	}
	if records[1][3] != "Cafe, Main St" || records[1][5] != "3" || records[1][2] != "-12.50" {
		t.Errorf("row 1 = %v", records[1])
	}
	if records[2][5] != "" {
		t.Errorf("row 2 envelope = %q, want empty", records[2][5])
	}
}

func TestBackup(t *testing.T) {
	tests := []struct {
		name    string
		open    string
		corrupt bool
		wantErr error
	}{
		{name: "right passphrase", open: "hunter2"},
		{name: "wrong passphrase", open: "hunter3", wantErr: ErrBadPassphrase},
		{name: "tampered", open: "hunter2", corrupt: true, wantErr: ErrBadPassphrase},
	}

	plain := []byte("2024-01-02 | -5 | Cafe | Food & Dining | \n")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := SealBackup("hunter2", plain)
			if err != nil {
				t.Fatalf("SealBackup() error = %v", err)
			}
			if bytes.Contains(sealed, []byte("Cafe")) {
				t.Fatal("sealed backup contains plaintext")
			}
			if tt.corrupt {
				sealed[len(sealed)-1] ^= 0xff
			}

			got, err := OpenBackup(tt.open, sealed)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("OpenBackup() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && !bytes.Equal(got, plain) {
				t.Errorf("OpenBackup() = %q, want %q", got, plain)
			}
		})
	}

	if _, err := OpenBackup("x", []byte("short")); !errors.Is(err, ErrBadPassphrase) {
		t.Errorf("OpenBackup(short) error = %v", err)
	}
	if _, err := SealBackup("", plain); err == nil {
		t.Error("SealBackup(empty passphrase) error = nil")
	}
}

func TestStoreBackup(t *testing.T) {
	s := newTestStore(t)
	if err := s.AppendLog(models.Transaction{UserID: 2, Date: "2024-01-02", Amount: -5, Merchant: "Cafe", Category: "Other"}); err != nil {
		t.Fatal(err)
	}

	name, err := s.Backup(2, "pass", time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	sealed, err := os.ReadFile(s.FullPath(name))
	if err != nil {
		t.Fatal(err)
	}
	data, err := OpenBackup("pass", sealed)
	if err != nil {
		t.Fatalf("OpenBackup() error = %v", err)
	}
	if want := "2024-01-02 | -5 | Cafe | Other | \n"; string(data) != want {
		t.Errorf("backup content = %q, want %q", data, want)
	}
}
