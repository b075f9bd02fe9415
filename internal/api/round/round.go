package round

import (
	"errors"
	"net/http"

	dto "powerrush_backend/internal/api/dto/round"
	"powerrush_backend/internal/converter"
	engine "powerrush_backend/internal/engine/round"
	"powerrush_backend/internal/middleware"
	"powerrush_backend/internal/service"
	"powerrush_backend/pkg/req"
	"powerrush_backend/pkg/resp"

	"go.uber.org/zap"
)

type HandlerDeps struct {
	Serv   service.GameService
	Logger *zap.Logger
}

type Handler struct {
	serv   service.GameService
	logger *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv, logger: deps.Logger}
}

// Start запускает обратный отсчет нового раунда
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDOrFail(w, r)
	if !ok {
		return
	}

	snap, err := h.serv.Start(r.Context(), deviceID)
	if err != nil {
		h.writeRoundError(w, err, snap)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStateResponse(snap))
}

// Tap засчитывает нажатие по экрану
func (h *Handler) Tap(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDOrFail(w, r)
	if !ok {
		return
	}

	res, err := h.serv.Tap(r.Context(), deviceID)
	if err != nil {
		h.writeRoundError(w, err, res.Snapshot)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToTapResponse(res))
}

// Key обрабатывает нажатие и отпускание клавиши
func (h *Handler) Key(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDOrFail(w, r)
	if !ok {
		return
	}

	payload, err := req.Decode[dto.KeyRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	res, err := h.serv.Key(r.Context(), deviceID, payload.Down, payload.Repeat)
	if err != nil {
		h.writeRoundError(w, err, res.Snapshot)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToTapResponse(res))
}

// Continue возвращает к экрану инструкции после результата
func (h *Handler) Continue(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDOrFail(w, r)
	if !ok {
		return
	}

	snap, err := h.serv.Continue(r.Context(), deviceID)
	if err != nil {
		h.writeRoundError(w, err, snap)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStateResponse(snap))
}

// Retry повторно проверяет лимиты заблокированного устройства
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDOrFail(w, r)
	if !ok {
		return
	}

	snap, err := h.serv.Retry(r.Context(), deviceID)
	if err != nil {
		h.writeRoundError(w, err, snap)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStateResponse(snap))
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDOrFail(w, r)
	if !ok {
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStateResponse(h.serv.State(r.Context(), deviceID)))
}

// DeviceStats статистика и допуск текущего устройства
func (h *Handler) DeviceStats(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDOrFail(w, r)
	if !ok {
		return
	}

	st, elig, err := h.serv.DeviceStats(r.Context(), deviceID)
	if err != nil {
		h.logger.Error("device stats failed", zap.String("device_id", deviceID), zap.Error(err))
		resp.WriteError(w, http.StatusInternalServerError, "device stats failed")
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToDeviceStatsResponse(st, elig))
}

func (h *Handler) writeRoundError(w http.ResponseWriter, err error, snap engine.Snapshot) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("round action failed", zap.String("device_id", snap.DeviceID), zap.Error(err))
		resp.WriteError(w, status, "internal error")
		return
	}

	resp.WriteJSONResponse(w, status, dto.ErrorResponse{
		Error: err.Error(),
		State: converter.ToStateResponse(snap),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotEligible),
		errors.Is(err, engine.ErrStillBlocked),
		errors.Is(err, engine.ErrClosed):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrWrongState),
		errors.Is(err, engine.ErrCooldown),
		errors.Is(err, engine.ErrNoPrizes),
		errors.Is(err, engine.ErrInputRejected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func deviceIDOrFail(w http.ResponseWriter, r *http.Request) (string, bool) {
	deviceID, ok := middleware.DeviceIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusBadRequest, "missing "+middleware.DeviceIDHeader+" header")
		return "", false
	}
	return deviceID, true
}
