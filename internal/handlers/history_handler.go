package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"arcana_lab/internal/model"
	"arcana_lab/internal/service"
	"arcana_lab/internal/webutil"
)

type HistoryHandler struct {
	service service.HistoryService
	logger  *slog.Logger
}

func NewHistoryHandler(s service.HistoryService, logger *slog.Logger) *HistoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryHandler{
		service: s,
		logger:  logger,
	}
}

type dayDrawsResponse struct {
	Date  string                 `json:"date"`
	Items []model.DrawSummaryDTO `json:"items"`
}

// GetRecent は直近の抽選を新しい順に返します。limit は 1〜20 に丸められます。
func (h *HistoryHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetRecent"))

	limit, err := queryInt(r, "limit")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	draws, err := h.service.GetRecent(r.Context(), limit)
	if err != nil {
		logger.Error("Error getting recent draws in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, listResponse[model.DrawSummaryDTO]{Items: model.NewDrawSummaryDTOs(draws)}, logger)
}

func (h *HistoryHandler) parseDateRange(r *http.Request) (model.DateRangeQuery, error) {
	q := model.DateRangeQuery{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}
	return q, webutil.ValidateStruct(q)
}

// GetCalendarMarks は期間内の日別件数を返します。抽選のない日は含みません。
func (h *HistoryHandler) GetCalendarMarks(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCalendarMarks"))

	q, err := h.parseDateRange(r)
	if err != nil {
		logger.Warn("Validation failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	marks, err := h.service.GetCalendarMarks(r.Context(), q.Start, q.End)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if marks == nil {
		marks = []model.CalendarMark{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, listResponse[model.CalendarMark]{Items: marks}, logger)
}

func (h *HistoryHandler) GetDayDraws(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetDayDraws"))
	date := chi.URLParam(r, "date")

	draws, err := h.service.GetDayDraws(r.Context(), date)
	if err != nil {
		logger.Warn("Error getting day draws in service", slog.String("date", date), slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, dayDrawsResponse{Date: date, Items: model.NewDrawSummaryDTOs(draws)}, logger)
}

// ListDraws は期間内 (両端を含む) の抽選を新しい順に返します。cardCount で絞り込めます。
func (h *HistoryHandler) ListDraws(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListDraws"))

	q, err := h.parseDateRange(r)
	if err != nil {
		logger.Warn("Validation failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	cardCount, err := queryInt(r, "cardCount")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	draws, err := h.service.ListDraws(r.Context(), model.DrawRangeFilter{Start: q.Start, End: q.End, CardCount: cardCount})
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, listResponse[model.DrawSummaryDTO]{Items: model.NewDrawSummaryDTOs(draws)}, logger)
}

func (h *HistoryHandler) GetDrawDetail(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetDrawDetail"))
	id := chi.URLParam(r, "drawId")

	draw, err := h.service.GetDrawDetail(r.Context(), id)
	if err != nil {
		logger.Warn("Error getting draw detail in service", slog.String("draw_id", id), slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, itemResponse[model.DrawDTO]{Item: model.NewDrawDTO(draw)}, logger)
}
