package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"arcana_lab/internal/model"
	"arcana_lab/internal/service"
	"arcana_lab/internal/webutil"
)

type CardHandler struct {
	service service.CardService
	logger  *slog.Logger
}

func NewCardHandler(s service.CardService, logger *slog.Logger) *CardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardHandler{
		service: s,
		logger:  logger,
	}
}

// ListCards はカード一覧を返します (query / arcana / suit で絞り込み)。
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListCards"))

	q := r.URL.Query()
	req := model.ListCardsQuery{
		Query:  strings.TrimSpace(q.Get("query")),
		Arcana: q.Get("arcana"),
		Suit:   q.Get("suit"),
	}
	if err := webutil.ValidateStruct(req); err != nil {
		logger.Warn("Validation failed", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	filter := model.CardFilter{Query: req.Query}
	if req.Arcana != "" {
		a := model.Arcana(req.Arcana)
		filter.Arcana = &a
	}
	if req.Suit != "" {
		s := model.Suit(req.Suit)
		filter.Suit = &s
	}

	cards, err := h.service.ListCards(r.Context(), filter)
	if err != nil {
		logger.Error("Error listing cards in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	if cards == nil {
		cards = []*model.TarotCard{}
	}
	logger.Debug("Cards listed", slog.Int("count", len(cards)))
	webutil.RespondWithJSON(w, http.StatusOK, listResponse[*model.TarotCard]{Items: cards}, logger)
}

func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCard"))
	id := chi.URLParam(r, "id")

	card, err := h.service.GetCard(r.Context(), id)
	if err != nil {
		logger.Warn("Error getting card in service", slog.String("card_id", id), slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, itemResponse[*model.TarotCard]{Item: card}, logger)
}

func (h *CardHandler) GetThumbnailSVG(w http.ResponseWriter, r *http.Request) {
	h.renderSVG(w, r, model.CardImageThumb)
}

func (h *CardHandler) GetImageSVG(w http.ResponseWriter, r *http.Request) {
	h.renderSVG(w, r, model.CardImageFull)
}

func (h *CardHandler) renderSVG(w http.ResponseWriter, r *http.Request, size model.CardImageSize) {
	logger := h.logger.With(slog.String("handler", "RenderCardSVG"), slog.String("size", string(size)))
	id := chi.URLParam(r, "id")

	body, err := h.service.RenderCardImage(r.Context(), id, size)
	if err != nil {
		logger.Warn("Error rendering card image", slog.String("card_id", id), slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSVG(w, body, logger)
}
