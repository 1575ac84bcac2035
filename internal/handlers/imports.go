package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"expensetracker/internal/logger"
	"expensetracker/internal/models"
	"expensetracker/internal/reconciliation"
)

const maxUploadBytes = 10 << 20

// Import reads an uploaded CSV or OFX statement. When the user has
// auto-detect on, the rows are staged for review; otherwise they are only
// returned as a preview.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	l := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(w, r, "import_parse_error", badRequest("failed to parse form"))
		return
	}
	file, header, err := r.FormFile("statement")
	if err != nil {
		fail(w, r, "import_file_error", badRequest("statement file is required"))
		return
	}
	defer file.Close()

	u, err := h.currentUser(r)
	if err != nil {
		fail(w, r, "import_user_error", err)
		return
	}
	l.Info("import_upload", "filename", header.Filename, "size", header.Size)

	stored, err := h.files.SaveUpload(u.ID, header.Filename, file)
	if err != nil {
		fail(w, r, "import_file_save_error", err)
		return
	}
	f, err := h.files.Get(stored)
	if err != nil {
		fail(w, r, "import_file_open_error", err)
		return
	}
	defer f.Close()

	detected, err := h.importer.Import(r.Context(), header.Filename, f)
	if err != nil {
		fail(w, r, "import_error", badRequest("could not read statement: %v", err))
		return
	}

	staged := 0
	if u.AutoDetect {
		items := make([]models.DetectedTransaction, 0, len(detected))
		for _, d := range detected {
			items = append(items, d.Staged(u.ID))
		}
		if staged, err = h.db.StoreDetected(u.ID, items); err != nil {
			fail(w, r, "import_store_error", err)
			return
		}
	}

	l.Info("import_complete", "detected", len(detected), "staged", staged, "file", stored)
	writeJSON(w, http.StatusOK, map[string]any{
		"detected": nonNil(detected),
		"staged":   staged,
	})
}

func (h *Handler) DetectedList(w http.ResponseWriter, r *http.Request) {
	items, err := h.db.ListDetected(userID(r))
	if err != nil {
		fail(w, r, "detected_list_error", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *Handler) DetectedAccept(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, "detected_accept_invalid", err)
		return
	}
	var req struct {
		EnvelopeID *int64 `json:"envelope_id"`
		Category   string `json:"category"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			fail(w, r, "detected_accept_decode_error", err)
			return
		}
	}

	t, err := h.db.AcceptDetected(userID(r), id, req.EnvelopeID, req.Category)
	if err != nil {
		fail(w, r, "detected_accept_error", err)
		return
	}
	h.record(r, t)
	logger.FromContext(r.Context()).Info("detected_accepted", "detected_id", id, "transaction_id", t.ID)
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) DetectedReject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, "detected_reject_invalid", err)
		return
	}
	if err := h.db.RejectDetected(userID(r), id); err != nil {
		fail(w, r, "detected_reject_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("detected_rejected", "detected_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Reconcile matches an uploaded statement against the user's transactions
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(w, r, "reconcile_parse_error", badRequest("failed to parse form"))
		return
	}
	file, header, err := r.FormFile("statement")
	if err != nil {
		fail(w, r, "reconcile_file_error", badRequest("statement file is required"))
		return
	}
	defer file.Close()

	var lines []reconciliation.StatementLine
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".ofx", ".qfx":
		for _, d := range h.importer.ImportOFX(ctx, file) {
			lines = append(lines, reconciliation.StatementLine{
				Date:     d.Date,
				Amount:   d.Amount,
				Merchant: d.Merchant,
				Raw:      d.Merchant,
			})
		}
	default:
		lines, err = reconciliation.ParseStatement(ctx, file)
		if err != nil {
			fail(w, r, "reconcile_statement_error", badRequest("could not read statement: %v", err))
			return
		}
	}

	txns, err := h.db.ListTransactions(userID(r), 0)
	if err != nil {
		fail(w, r, "reconcile_transactions_error", err)
		return
	}

	result := reconciliation.Reconcile(lines, txns)
	logger.FromContext(ctx).Info("reconcile_complete",
		"statement_lines", len(lines),
		"matches", len(result.Matches),
		"match_rate", result.MatchRate,
	)
	writeJSON(w, http.StatusOK, result)
}
