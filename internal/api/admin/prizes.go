package admin

import (
	"net/http"
	"strconv"

	dto "powerrush_backend/internal/api/dto/admin"
	"powerrush_backend/internal/converter"
	"powerrush_backend/pkg/req"
	"powerrush_backend/pkg/resp"

	"github.com/go-chi/chi/v5"
)

// AddPrize вручную отмечает номер как выданный
func (h *Handler) AddPrize(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.PrizeNumberRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	s, err := h.serv.AddPrize(r.Context(), requestBody.Number)
	if err != nil {
		h.writeError(w, "add prize", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusCreated, converter.ToSettingsDTO(s))
}

// EditPrize заменяет номер в истории, время и победитель сохраняются
func (h *Handler) EditPrize(w http.ResponseWriter, r *http.Request) {
	oldNumber, ok := numberParam(w, r)
	if !ok {
		return
	}

	requestBody, err := req.Decode[dto.PrizeNumberRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	s, err := h.serv.EditPrize(r.Context(), oldNumber, requestBody.Number)
	if err != nil {
		h.writeError(w, "edit prize", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSettingsDTO(s))
}

func (h *Handler) RemovePrize(w http.ResponseWriter, r *http.Request) {
	number, ok := numberParam(w, r)
	if !ok {
		return
	}

	s, err := h.serv.RemovePrize(r.Context(), number)
	if err != nil {
		h.writeError(w, "remove prize", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSettingsDTO(s))
}

// ResetPrizes возвращает остаток к общему числу призов
func (h *Handler) ResetPrizes(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.ResetPrizesRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	s, err := h.serv.ResetPrizes(r.Context(), requestBody.ClearHistory)
	if err != nil {
		h.writeError(w, "reset prizes", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSettingsDTO(s))
}

// SimulateDraw тестовый розыгрыш номера из админки
func (h *Handler) SimulateDraw(w http.ResponseWriter, r *http.Request) {
	number, s, err := h.serv.SimulateDraw(r.Context())
	if err != nil {
		h.writeError(w, "simulate draw", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, dto.SimulateResponse{
		PrizeNumber:     number,
		RemainingPrizes: s.RemainingPrizes,
	})
}

func numberParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid prize number")
		return 0, false
	}
	return number, true
}
