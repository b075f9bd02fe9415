package admin

import (
	"bytes"
	"net/http"

	dto "powerrush_backend/internal/api/dto/admin"
	"powerrush_backend/internal/converter"
	"powerrush_backend/internal/model"
	"powerrush_backend/pkg/resp"
)

const exportFileName = "powerrush-logs.csv"

// Logs журнал игр с фильтрами ?result=&time=&search=&device=
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	filter, ok := logFilter(w, r)
	if !ok {
		return
	}

	logs, err := h.serv.Logs(r.Context(), filter)
	if err != nil {
		h.writeError(w, "get logs", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, dto.LogsResponse{
		Total: len(logs),
		Logs:  converter.ToGameLogs(logs),
	})
}

func (h *Handler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.serv.ClearLogs(r.Context()); err != nil {
		h.writeError(w, "clear logs", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportLogs выгружает отфильтрованный журнал в CSV
func (h *Handler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	filter, ok := logFilter(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.serv.ExportLogs(r.Context(), filter, &buf); err != nil {
		h.writeError(w, "export logs", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.serv.Analytics(r.Context())
	if err != nil {
		h.writeError(w, "get analytics", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToAnalyticsResponse(a))
}

func logFilter(w http.ResponseWriter, r *http.Request) (model.LogFilter, bool) {
	q := r.URL.Query()
	filter := model.LogFilter{
		Result:   model.ResultFilter(q.Get("result")),
		Time:     model.TimeFilter(q.Get("time")),
		Search:   q.Get("search"),
		DeviceID: q.Get("device"),
	}

	switch filter.Result {
	case "":
		filter.Result = model.ResultFilterAll
	case model.ResultFilterAll, model.ResultFilterWins, model.ResultFilterLosses:
	default:
		resp.WriteError(w, http.StatusBadRequest, "invalid result filter")
		return model.LogFilter{}, false
	}

	switch filter.Time {
	case "":
		filter.Time = model.TimeFilterAll
	case model.TimeFilterAll, model.TimeFilterToday, model.TimeFilterWeek, model.TimeFilterMonth:
	default:
		resp.WriteError(w, http.StatusBadRequest, "invalid time filter")
		return model.LogFilter{}, false
	}

	return filter, true
}
