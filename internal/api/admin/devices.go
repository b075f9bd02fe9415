package admin

import (
	"net/http"

	dto "powerrush_backend/internal/api/dto/admin"
	"powerrush_backend/internal/converter"
	"powerrush_backend/internal/model"
	"powerrush_backend/pkg/req"
	"powerrush_backend/pkg/resp"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Whitelist(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.WhitelistRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	rules, err := h.serv.Whitelist(r.Context(), requestBody.DeviceID)
	if err != nil {
		h.writeError(w, "whitelist device", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, toRules(rules))
}

func (h *Handler) Unwhitelist(w http.ResponseWriter, r *http.Request) {
	rules, err := h.serv.Unwhitelist(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		h.writeError(w, "unwhitelist device", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, toRules(rules))
}

func (h *Handler) AddName(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.NameRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	names, err := h.serv.AddName(r.Context(), requestBody.Name)
	if err != nil {
		h.writeError(w, "add name", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, names)
}

func (h *Handler) RemoveName(w http.ResponseWriter, r *http.Request) {
	names, err := h.serv.RemoveName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, "remove name", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, names)
}

// Device статистика произвольного устройства для поддержки
func (h *Handler) Device(w http.ResponseWriter, r *http.Request) {
	st, elig, err := h.serv.Device(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		h.writeError(w, "get device", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToDeviceStatsResponse(st, elig))
}

func toRules(rules model.GameRules) dto.GameRules {
	whitelist := rules.WhitelistedDevices
	if whitelist == nil {
		whitelist = []string{}
	}
	return dto.GameRules{
		MaxPlaysPerDevice:  rules.MaxPlaysPerDevice,
		MaxWinsPerDevice:   rules.MaxWinsPerDevice,
		WhitelistedDevices: whitelist,
	}
}
