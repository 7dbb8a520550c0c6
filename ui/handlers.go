package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"csvdoctor/adapters/csvio"
	"csvdoctor/adapters/export"
	"csvdoctor/domain/table"
	"csvdoctor/internal/analyzer"
	"csvdoctor/internal/cleaner"
	"csvdoctor/internal/errors"
	"csvdoctor/internal/report"
	"csvdoctor/internal/session"
	"csvdoctor/internal/validator"
)

// cleanOperation is one step in a clean request, dispatched by type.
type cleanOperation struct {
	Type      string            `json:"type"`
	Columns   []string          `json:"columns,omitempty"`
	Method    string            `json:"method,omitempty"`
	Value     interface{}       `json:"value,omitempty"`
	Subset    []string          `json:"subset,omitempty"`
	Keep      string            `json:"keep,omitempty"`
	Case      string            `json:"case,omitempty"`
	Threshold *float64          `json:"threshold,omitempty"`
	Mapping   map[string]string `json:"mapping,omitempty"`
}

type cleanRequest struct {
	Operations []cleanOperation `json:"operations"`
}

type validateRequest struct {
	Schema map[string]string `json:"schema,omitempty"`
}

func (a *App) handleFeatures(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"upload_formats": []string{"csv", "tsv", "xlsx"},
		"export_formats": []string{"csv", "tsv", "json", "xlsx", "html"},
		"clean_operations": []string{
			"remove_empty_rows", "remove_empty_columns", "trim_whitespace",
			"remove_duplicates", "fill_missing", "standardize_column_names",
			"normalize_text_case", "remove_outliers", "convert_types",
		},
		"fill_methods":    []string{"mean", "median", "mode", "forward_fill", "backward_fill", "value"},
		"outlier_methods": []string{"iqr", "zscore"},
	})
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.Upload.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, errors.InvalidInput("missing file field"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		a.writeError(w, errors.LoadFailed("could not read uploaded file", err))
		return
	}

	var tbl *table.Table
	if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		tbl, err = csvio.LoadXLSX(bytes.NewReader(raw))
	} else {
		tbl, err = csvio.LoadCSV(bytes.NewReader(raw))
	}
	if err != nil {
		a.writeError(w, err)
		return
	}

	sess := a.sessions.Create(header.Filename, tbl, nil)
	a.log.Info("uploaded %s: %d rows, %d columns", header.Filename, tbl.NumRows(), tbl.NumCols())

	if a.cfg.Upload.Dir != "" {
		if err := archiveUpload(a.cfg.Upload.Dir, sess.ID, header.Filename, raw); err != nil {
			a.log.Warn("could not archive upload %s: %v", header.Filename, err)
		}
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"file_name":  sess.FileName,
		"rows":       tbl.NumRows(),
		"columns":    tbl.NumCols(),
		"validation": csvio.ValidateStructure(tbl),
		"sample":     csvio.Sample(tbl, a.cfg.Report.SampleRows),
	})
}

// archiveUpload keeps the raw upload on disk under dir, named by session id
// so archived files never collide. Archiving is best effort; a failure is
// logged by the caller and does not fail the upload.
func archiveUpload(dir, sessionID, fileName string, raw []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	ext := filepath.Ext(fileName)
	if ext == "" {
		ext = ".csv"
	}
	return os.WriteFile(filepath.Join(dir, sessionID+ext), raw, 0o644)
}

func (a *App) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"file_name":  sess.FileName,
		"rows":       sess.Table.NumRows(),
		"columns":    sess.Table.NumCols(),
		"changes":    sess.Changes,
		"created_at": sess.CreatedAt,
		"updated_at": sess.UpdatedAt,
	})
}

func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	an := analyzer.New(sess.Table)
	rep := an.Report()
	rep.HighCorrelations = an.HighCorrelations(a.cfg.Report.CorrelationThreshold)
	a.writeJSON(w, http.StatusOK, rep)
}

func (a *App) handleValidate(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}

	var req validateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.writeError(w, errors.InvalidInput("invalid request body"))
			return
		}
	}

	v := validator.New(sess.Table)
	result := map[string]interface{}{"report": v.Report()}
	if len(req.Schema) > 0 {
		result["schema_validation"] = v.ValidateSchema(req.Schema)
	}
	a.writeJSON(w, http.StatusOK, result)
}

func (a *App) handleClean(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}

	var req cleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("invalid request body"))
		return
	}
	if len(req.Operations) == 0 {
		a.writeError(w, errors.InvalidInput("no operations given"))
		return
	}

	pipeline := cleaner.New(sess.Table)
	for _, op := range req.Operations {
		if err := applyOperation(pipeline, op); err != nil {
			a.writeError(w, err)
			return
		}
	}

	sess, err := a.sessions.Update(sess.ID, pipeline.Table(), pipeline.Changes())
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"rows":       sess.Table.NumRows(),
		"columns":    sess.Table.NumCols(),
		"changes":    pipeline.Changes(),
		"change_log": sess.Changes,
	})
}

func applyOperation(p *cleaner.Pipeline, op cleanOperation) error {
	switch op.Type {
	case "remove_empty_rows":
		p.RemoveEmptyRows()
	case "remove_empty_columns":
		p.RemoveEmptyColumns()
	case "trim_whitespace":
		p.TrimWhitespace(op.Columns)
	case "remove_duplicates":
		keep := cleaner.KeepFirst
		if op.Keep != "" {
			keep = cleaner.KeepMode(op.Keep)
		}
		p.RemoveDuplicates(op.Subset, keep)
	case "fill_missing":
		method := cleaner.FillMethod(op.Method)
		var fill *table.Value
		if method == cleaner.FillValue {
			v := jsonToValue(op.Value)
			fill = &v
		}
		p.FillMissing(method, op.Columns, fill)
	case "standardize_column_names":
		p.StandardizeColumnNames()
	case "normalize_text_case":
		p.NormalizeTextCase(op.Columns, cleaner.TextCase(op.Case))
	case "remove_outliers":
		method := cleaner.OutlierMethod(op.Method)
		threshold := cleaner.DefaultIQRThreshold
		if method == cleaner.OutlierZScore {
			threshold = cleaner.DefaultZScoreThreshold
		}
		if op.Threshold != nil {
			threshold = *op.Threshold
		}
		p.RemoveOutliers(op.Columns, method, threshold)
	case "convert_types":
		p.ConvertTypes(op.Mapping)
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown operation: %s", op.Type))
	}
	return nil
}

func jsonToValue(v interface{}) table.Value {
	switch t := v.(type) {
	case float64:
		return table.NewNumberValue(t)
	case bool:
		return table.NewBoolValue(t)
	case string:
		return table.NewStringValue(t)
	}
	return table.MissingValue()
}

func (a *App) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Reset(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"rows":       sess.Table.NumRows(),
		"columns":    sess.Table.NumCols(),
	})
}

func (a *App) handleExportData(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(formatParam(r, "csv"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(sess.FileName, format)))
	if err := export.Write(w, sess.Table, format); err != nil {
		a.log.Error("export failed: %v", err)
	}
}

func (a *App) handleExportReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}

	an := analyzer.New(sess.Table)
	analysis := an.Report()
	validation := validator.New(sess.Table).Report()

	in := report.Input{
		FileName:   sess.FileName,
		Analysis:   &analysis,
		Validation: &validation,
		Changes:    sess.Changes,
	}
	for _, name := range sess.Table.ColumnNames() {
		if ins := an.ColumnInsights(name); ins != nil {
			in.Insights = append(in.Insights, *ins)
		}
	}

	switch formatParam(r, "md") {
	case "html":
		w.Header().Set("Content-Type", "text/html")
		w.Write(report.HTML(in))
	default:
		w.Header().Set("Content-Type", "text/markdown")
		fmt.Fprint(w, report.Markdown(in))
	}
}

func formatParam(r *http.Request, fallback string) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return fallback
}

// session fetches the request's session or writes a not-found response.
func (a *App) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.log.Error("failed to encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeLoadFailed, errors.CodeUnsupportedFormat:
		status = http.StatusBadRequest
	case errors.CodeSessionNotFound, errors.CodeNotFound:
		status = http.StatusNotFound
	}
	a.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
