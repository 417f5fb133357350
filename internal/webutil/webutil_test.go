package webutil

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcana_lab/internal/model"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"入力不正", model.NewValidationError("cardCount", "bad"), http.StatusBadRequest},
		{"未検出 (ラップ)", fmt.Errorf("repo: %w", model.ErrNotFound), http.StatusNotFound},
		{"上流失敗", fmt.Errorf("openai: %w", model.ErrUpstreamFailure), http.StatusBadGateway},
		{"不明なエラー", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestHandleError_AppError(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleError(rr, testLogger, model.NewNotFoundError("not here", "drawId", "abc"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var resp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "abc", resp.Error.Detail["drawId"])
}

func TestHandleError_UnknownErrorIsMasked(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleError(rr, testLogger, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
	assert.Contains(t, rr.Body.String(), "INTERNAL_SERVER_ERROR")
}

type sampleRequest struct {
	CardCount int `json:"cardCount" validate:"required,min=1,max=3"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    int
	}{
		{name: "正常", body: `{"cardCount":2}`, want: 2},
		{name: "未知のフィールド", body: `{"cardCount":2,"extra":true}`, wantErr: true},
		{name: "型違い", body: `{"cardCount":"two"}`, wantErr: true},
		{name: "小数", body: `{"cardCount":1.5}`, wantErr: true},
		{name: "空", body: ``, wantErr: true},
		{name: "複数値", body: `{"cardCount":1}{"cardCount":2}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst sampleRequest
			err := DecodeJSONBody(httptest.NewRecorder(), r, &dst)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dst.CardCount)
		})
	}
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sampleRequest{CardCount: 3}))

	err := ValidateStruct(sampleRequest{CardCount: 4})
	require.Error(t, err)
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "cardCount", appErr.Field)
	assert.Contains(t, appErr.Message, "카드 수")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	err = ValidateStruct(sampleRequest{CardCount: 0})
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "필수")
}
