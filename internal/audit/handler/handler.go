// Package handler is the HTTP boundary of the audit engine: file uploads,
// filter/option changes, run triggers, and the spreadsheet export.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"drawing-audit-service/internal/audit/model"
	"drawing-audit-service/internal/audit/service"
	"drawing-audit-service/internal/audit/session"
	"drawing-audit-service/internal/config"
	"drawing-audit-service/internal/fileio"
	"drawing-audit-service/internal/middleware"
)

type Handler struct {
	cfg  config.Config
	log  zerolog.Logger
	sess *session.Session
}

func New(cfg config.Config, log zerolog.Logger, sess *session.Session) *Handler {
	return &Handler{cfg: cfg, log: log, sess: sess}
}

func (h *Handler) reqLog(r *http.Request) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return h.log.With().Str("rid", rid).Logger()
	}
	return h.log
}

// readUpload parses the multipart "file" field into a table. Parse errors
// leave session state untouched; the caller reports them as 400.
func (h *Handler) readUpload(r *http.Request) (model.Table, error) {
	if err := r.ParseMultipartForm(int64(h.cfg.MaxUploadMB) << 20); err != nil {
		return model.Table{}, err
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return model.Table{}, err
	}
	defer f.Close()
	return fileio.ReadTable(f, hdr.Filename)
}

func (h *Handler) UploadStock(w http.ResponseWriter, r *http.Request) {
	log := h.reqLog(r)
	t, err := h.readUpload(r)
	if err != nil {
		log.Warn().Err(err).Msg("stock upload failed")
		writeError(w, http.StatusBadRequest, "failed to read stock file: "+err.Error())
		return
	}
	dropped := h.sess.SetStock(t)
	log.Info().Str("file", t.FileName).Int("rows", len(t.Rows)).Int("dropped", dropped).Msg("stock loaded")
	writeJSON(w, http.StatusOK, map[string]any{
		"fileName": t.FileName,
		"sheet":    t.Sheet,
		"headers":  t.Headers,
		"rows":     len(t.Rows) - dropped,
		"dropped":  dropped,
	})
}

func (h *Handler) UploadVault(w http.ResponseWriter, r *http.Request) {
	log := h.reqLog(r)
	t, err := h.readUpload(r)
	if err != nil {
		log.Warn().Err(err).Msg("vault upload failed")
		writeError(w, http.StatusBadRequest, "failed to read vault file: "+err.Error())
		return
	}
	h.sess.SetVault(t)
	log.Info().Str("file", t.FileName).Int("rows", len(t.Rows)).Msg("vault loaded")
	writeJSON(w, http.StatusOK, map[string]any{
		"fileName": t.FileName,
		"sheet":    t.Sheet,
		"headers":  t.Headers,
		"rows":     len(t.Rows),
	})
}

// Summary exposes what the UI shows after loading: headers, row counts,
// group tallies and vault filetype tallies.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	stock, vault := h.sess.Tables()

	groupIdx := model.FindColumn(stock.Headers, "Group Desc")
	typeIdx := model.FindColumn(vault.Headers, "Filetype")

	writeJSON(w, http.StatusOK, map[string]any{
		"stock": map[string]any{
			"fileName":    stock.FileName,
			"headers":     stock.Headers,
			"rows":        len(stock.Rows),
			"groupCounts": service.GroupCounts(stock.Rows, groupIdx),
		},
		"vault": map[string]any{
			"fileName":       vault.FileName,
			"headers":        vault.Headers,
			"rows":           len(vault.Rows),
			"filetypeCounts": service.GroupCounts(vault.Rows, typeIdx),
		},
	})
}

type filterRequest struct {
	Groups map[string]bool `json:"groups"`
	Mode   string          `json:"mode"`
	Start  string          `json:"start"`
	End    string          `json:"end"`
}

func (h *Handler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad filter payload: "+err.Error())
		return
	}

	f := service.StockFilter{
		Selected: req.Groups,
		Mode:     service.DateFilterMode(req.Mode),
	}
	if f.Mode == "" {
		f.Mode = service.DateFilterNone
	}
	if f.Mode == service.DateFilterCustom {
		if d, ok := service.ParseLooseDate(req.Start); ok {
			f.Start = &d
		}
		if d, ok := service.ParseLooseDate(req.End); ok {
			f.End = &d
		}
	}
	h.sess.SetFilter(f)
	writeJSON(w, http.StatusOK, map[string]string{"status": "scheduled"})
}

func (h *Handler) SetOptions(w http.ResponseWriter, r *http.Request) {
	var opts model.Options
	if err := decodeJSON(r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, "bad options payload: "+err.Error())
		return
	}
	h.sess.SetOptions(opts)
	writeJSON(w, http.StatusOK, map[string]string{"status": "scheduled"})
}

func (h *Handler) RunAudit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := h.reqLog(r)

	res, err := h.sess.RunNow()
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, service.ErrNotLoaded) {
			status = http.StatusConflict
		}
		log.Warn().Err(err).Msg("audit run aborted")
		writeError(w, status, err.Error())
		return
	}

	log.Info().Dur("elapsed", time.Since(start)).Int("considered", res.Counts.TotalConsidered).Msg("audit run")
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	snap := h.sess.Latest()
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	log := h.reqLog(r)

	res, err := h.sess.RunNow()
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, service.ErrNotLoaded) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	name := service.ExportFileName(time.Now())
	data, err := fileio.WriteXLSX("Audit", service.ExportHeaders, service.ExportCells(res.Export))
	if err != nil {
		log.Error().Err(err).Msg("export build failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(data)
	log.Info().Str("file", name).Int("rows", len(res.Export)).Msg("audit exported")
}

func (h *Handler) Wildcards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.WildcardPatterns())
}

func (h *Handler) WildcardTest(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code parameter")
		return
	}
	matches, matchType := h.sess.TestCode(code)
	writeJSON(w, http.StatusOK, map[string]any{
		"matchType": matchType,
		"matches":   matches,
	})
}
