package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"arcana_lab/internal/model"
)

// queryInt は整数のクエリパラメータを読みます。未指定なら nil です。
func queryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, model.NewValidationError(name, name+"는 정수여야 합니다.").WithDetail(name, raw)
	}
	return &v, nil
}

// listResponse は一覧系エンドポイントの共通レスポンスです。
type listResponse[T any] struct {
	Items []T `json:"items"`
}

type itemResponse[T any] struct {
	Item T `json:"item"`
}
