package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"drawing-audit-service/internal/audit/session"
)

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

func (h *Handler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.ReviewQueue())
}

type reviewRequest struct {
	Key string `json:"key"`
}

func (h *Handler) reviewAction(w http.ResponseWriter, r *http.Request, act func(string) error) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil || req.Key == "" {
		writeError(w, http.StatusBadRequest, "missing review item key")
		return
	}
	if err := act(req.Key); err != nil {
		if errors.Is(err, session.ErrReviewItemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.reviewAction(w, r, h.sess.Approve)
}

func (h *Handler) Flag(w http.ResponseWriter, r *http.Request) {
	h.reviewAction(w, r, h.sess.Flag)
}

type conflictRequest struct {
	StockPhrase string `json:"stockPhrase"`
	VaultPhrase string `json:"vaultPhrase"`
}

// SaveConflict receives the phrases the reviewer selected from each side of
// a flagged match and turns them into a conflict or required rule.
func (h *Handler) SaveConflict(w http.ResponseWriter, r *http.Request) {
	var req conflictRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad conflict payload: "+err.Error())
		return
	}
	if err := h.sess.SaveConflict(req.StockPhrase, req.VaultPhrase); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.sess.RulesSummary())
}
