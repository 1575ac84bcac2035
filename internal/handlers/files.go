package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"expensetracker/internal/filestore"
	"expensetracker/internal/logger"
)

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	txns, err := h.db.ListTransactions(id, 0)
	if err != nil {
		fail(w, r, "export_transactions_error", err)
		return
	}
	name, err := h.files.ExportCSV(id, txns, h.now())
	if err != nil {
		fail(w, r, "export_write_error", err)
		return
	}

	logger.FromContext(r.Context()).Info("export_created", "file", name, "transactions", len(txns))
	w.Header().Set("Content-Type", "text/csv")
	h.serveStored(w, r, name)
}

// Backup seals the user's transaction log with a passphrase and returns it
// as a download.
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "backup_decode_error", err)
		return
	}
	if len(req.Passphrase) < 8 {
		fail(w, r, "backup_invalid", badRequest("passphrase must be at least 8 characters"))
		return
	}

	name, err := h.files.Backup(userID(r), req.Passphrase, h.now())
	if err != nil {
		fail(w, r, "backup_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("backup_created", "file", name)
	w.Header().Set("Content-Type", "application/octet-stream")
	h.serveStored(w, r, name)
}

// BackupOpen decrypts an uploaded backup and returns the log it contains
func (h *Handler) BackupOpen(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(w, r, "backup_open_parse_error", badRequest("failed to parse form"))
		return
	}
	file, _, err := r.FormFile("backup")
	if err != nil {
		fail(w, r, "backup_open_file_error", badRequest("backup file is required"))
		return
	}
	defer file.Close()

	sealed, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		fail(w, r, "backup_open_read_error", err)
		return
	}
	data, err := filestore.OpenBackup(r.FormValue("passphrase"), sealed)
	if err != nil {
		fail(w, r, "backup_open_error", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}

func (h *Handler) serveStored(w http.ResponseWriter, r *http.Request, name string) {
	f, err := h.files.Get(name)
	if err != nil {
		fail(w, r, "file_open_error", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(name)))
	if _, err := io.Copy(w, f); err != nil {
		logger.FromContext(r.Context()).Warn("file_send_error", "file", name, "error", err.Error())
	}
}
