package admin

import (
	"errors"
	"net/http"

	dto "powerrush_backend/internal/api/dto/admin"
	"powerrush_backend/internal/config"
	"powerrush_backend/internal/converter"
	"powerrush_backend/internal/engine/prize"
	"powerrush_backend/internal/engine/quota"
	"powerrush_backend/internal/service"
	"powerrush_backend/pkg/req"
	"powerrush_backend/pkg/resp"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type HandlerDeps struct {
	Serv    service.AdminService
	GameCfg config.GameConfig
	Clock   clockwork.Clock
	Logger  *zap.Logger
}

type Handler struct {
	serv    service.AdminService
	gameCfg config.GameConfig
	clock   clockwork.Clock
	logger  *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		serv:    deps.Serv,
		gameCfg: deps.GameCfg,
		clock:   deps.Clock,
		logger:  deps.Logger,
	}
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.serv.Settings(r.Context())
	if err != nil {
		h.writeError(w, "get settings", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSettingsDTO(s))
}

// UpdateSettings сохраняет форму настроек целиком.
// История призов в теле запроса игнорируется.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.Settings](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	current, err := h.serv.Settings(r.Context())
	if err != nil {
		h.writeError(w, "get settings", err)
		return
	}

	s, err := h.serv.UpdateSettings(r.Context(), converter.ToSettingsModel(requestBody, current))
	if err != nil {
		h.writeError(w, "update settings", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSettingsDTO(s))
}

// Difficulty текущая эффективная сложность и ее источник
func (h *Handler) Difficulty(w http.ResponseWriter, r *http.Request) {
	info, winProbability, err := h.serv.Difficulty(r.Context())
	if err != nil {
		h.writeError(w, "get difficulty", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToDifficultyResponse(info, winProbability))
}

// Import переносит настройки и журнал из экспорта старого киоска
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.LegacySettings](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	settings, logs := converter.MigrateSettings(requestBody, h.gameCfg.DefaultSettings(), h.clock.Now())

	s, imported, err := h.serv.Import(r.Context(), settings, logs)
	if err != nil {
		h.writeError(w, "import settings", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, dto.ImportResponse{
		Settings:     converter.ToSettingsDTO(s),
		ImportedLogs: imported,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.Error(err))
		resp.WriteError(w, status, op+" failed")
		return
	}

	resp.WriteError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidSettings),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, prize.ErrOutOfRange),
		errors.Is(err, quota.ErrInvalidDeviceID):
		return http.StatusBadRequest
	case errors.Is(err, prize.ErrNotFound),
		errors.Is(err, service.ErrNameNotFound),
		errors.Is(err, quota.ErrNotWhitelisted):
		return http.StatusNotFound
	case errors.Is(err, prize.ErrDuplicate),
		errors.Is(err, prize.ErrExhausted),
		errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, quota.ErrAlreadyWhitelisted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
