package handlers

import (
	"log/slog"
	"net/http"

	"arcana_lab/internal/model"
	"arcana_lab/internal/service"
	"arcana_lab/internal/webutil"
)

type DrawHandler struct {
	service service.DrawService
	logger  *slog.Logger
}

func NewDrawHandler(s service.DrawService, logger *slog.Logger) *DrawHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DrawHandler{
		service: s,
		logger:  logger,
	}
}

// CreateDraw は 1〜3 枚のカードを引き、リーディング付きの抽選を作成します。
func (h *DrawHandler) CreateDraw(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CreateDraw"))

	var req model.CreateDrawRequest
	if err := webutil.DecodeJSONBody(w, r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		logger.Warn("Validation failed", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	result, err := h.service.CreateDraw(r.Context(), req.CardCount)
	if err != nil {
		logger.Error("Error creating draw in service", slog.Any("error", err), slog.Int("card_count", req.CardCount))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Draw created successfully", slog.String("draw_id", result.Draw.ID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, model.CreateDrawResponse{
		Draw:  model.NewDrawDTO(result.Draw),
		Model: result.Model,
	}, logger)
}
