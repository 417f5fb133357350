package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"arcana_lab/internal/config"
	"arcana_lab/internal/middleware"
	"arcana_lab/internal/model"
	"arcana_lab/internal/service"
	"arcana_lab/internal/webutil"
)

// RouterDeps はルーターの組み立てに必要な依存です。
type RouterDeps struct {
	Logger                 *slog.Logger
	DB                     *gorm.DB
	CORS                   config.CORSConfig
	BasePath               string
	DrawRateLimitPerMinute int
	RequestTimeout         time.Duration

	CardService    service.CardService
	DrawService    service.DrawService
	HistoryService service.HistoryService
}

func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	basePath := deps.BasePath
	if basePath == "" {
		basePath = config.DefaultPublicBasePath
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	cardHandler := NewCardHandler(deps.CardService, logger)
	drawHandler := NewDrawHandler(deps.DrawService, logger)
	historyHandler := NewHistoryHandler(deps.HistoryService, logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.MetricsMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   deps.CORS.AllowedOrigins,
		AllowedMethods:   deps.CORS.AllowedMethods,
		AllowedHeaders:   deps.CORS.AllowedHeaders,
		ExposedHeaders:   deps.CORS.ExposedHeaders,
		AllowCredentials: deps.CORS.AllowCredentials,
		MaxAge:           deps.CORS.MaxAge,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	// リーディング生成の待ち時間を含むため長め
	r.Use(chimiddleware.Timeout(timeout))

	r.Route(basePath, func(r chi.Router) {
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.ListCards)
			r.Get("/{id}", cardHandler.GetCard)
			r.Get("/{id}/thumbnail.svg", cardHandler.GetThumbnailSVG)
			r.Get("/{id}/image.svg", cardHandler.GetImageSVG)
		})

		r.Group(func(r chi.Router) {
			if deps.DrawRateLimitPerMinute > 0 {
				r.Use(drawRateLimiter(deps.DrawRateLimitPerMinute, logger))
			}
			r.Post("/draws", drawHandler.CreateDraw)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.ListDraws)
			r.Get("/recent", historyHandler.GetRecent)
			r.Get("/marks", historyHandler.GetCalendarMarks)
			r.Get("/day/{date}", historyHandler.GetDayDraws)
			r.Get("/{drawId}", historyHandler.GetDrawDetail)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sqlDB, err := deps.DB.DB()
		if err != nil {
			middleware.GetLogger(ctx).Error("Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			middleware.GetLogger(ctx).Error("Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// drawRateLimiter はクライアント IP ごとに抽選作成の回数を制限します。
func drawRateLimiter(perMinute int, logger *slog.Logger) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			middleware.GetLogger(r.Context()).Warn("Draw rate limit exceeded", slog.String("remote_addr", r.RemoteAddr))
			webutil.RespondWithJSON(w, http.StatusTooManyRequests, model.APIErrorResponse{
				Error: model.ErrorDetail{Code: "RATE_LIMITED", Message: "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."},
			}, logger)
		}),
	)
}
