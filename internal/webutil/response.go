package webutil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"arcana_lab/internal/model"
)

// HandleError はエラーを解釈し、適切なJSONエラーレスポンスを返します。
func HandleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := MapErrorToStatusCode(err)

	var errResp model.APIErrorResponse
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		errResp = model.APIErrorResponse{Error: appErr.ToDetail()}
		if statusCode >= http.StatusInternalServerError {
			logger.Error("Request failed", slog.Any("error", err), slog.String("code", appErr.Code))
		}
	} else {
		kind := model.KindOf(err)
		if kind == model.KindInternal {
			// 想定外のエラーは詳細をログにのみ残す
			logger.Error("Unhandled error", slog.Any("error", err))
		}
		errResp = model.APIErrorResponse{
			Error: model.ErrorDetail{
				Code:    kind.String(),
				Message: defaultMessage(kind),
			},
		}
	}

	RespondWithJSON(w, statusCode, errResp, logger)
}

// MapErrorToStatusCode はアプリケーションエラーをHTTPステータスコードにマッピングします
func MapErrorToStatusCode(err error) int {
	switch model.KindOf(err) {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func defaultMessage(kind model.ErrorKind) string {
	switch kind {
	case model.KindValidation:
		return "요청이 올바르지 않습니다."
	case model.KindNotFound:
		return "요청한 리소스를 찾을 수 없습니다."
	case model.KindUpstreamFailure:
		return "리딩 생성 서비스 호출에 실패했습니다."
	default:
		return "서버 내부 오류가 발생했습니다."
	}
}

// RespondWithJSON はJSONレスポンスを返します
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error marshaling JSON response", slog.Any("error", err))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_SERVER_ERROR","message":"응답 생성 중 오류가 발생했습니다."}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		logger.Warn("Error writing response body", slog.Any("error", err))
	}
}

// RespondWithSVG は SVG 画像を返します。カード画像は不変なので長めにキャッシュさせます。
func RespondWithSVG(w http.ResponseWriter, body []byte, logger *slog.Logger) {
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Warn("Error writing svg body", slog.Any("error", err))
	}
}
