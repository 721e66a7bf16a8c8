package handler

import (
	"io"
	"net/http"
	"time"

	"drawing-audit-service/internal/audit/rules"
)

// ExportRules serves the current rule store as a downloadable JSON document.
func (h *Handler) ExportRules(w http.ResponseWriter, r *http.Request) {
	doc := h.sess.ExportRules()
	w.Header().Set("Content-Disposition",
		`attachment; filename="audit-rules-`+time.Now().UTC().Format("2006-01-02")+`.json"`)
	writeJSON(w, http.StatusOK, doc)
}

// ImportRules replaces the rule collections from an uploaded document.
// Wrong-shaped fields default to empty; only non-JSON input is rejected.
func (h *Handler) ImportRules(w http.ResponseWriter, r *http.Request) {
	log := h.reqLog(r)
	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read rules file: "+err.Error())
		return
	}
	doc, err := rules.ParseDocument(data)
	if err != nil {
		log.Warn().Err(err).Msg("rules import rejected")
		writeError(w, http.StatusBadRequest, "rules file is not a JSON object")
		return
	}
	sum := h.sess.ImportRules(doc)
	log.Info().Interface("summary", sum).Msg("rules imported")
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) ClearRules(w http.ResponseWriter, r *http.Request) {
	h.sess.ClearRules()
	writeJSON(w, http.StatusOK, h.sess.RulesSummary())
}
