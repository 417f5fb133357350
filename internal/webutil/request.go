package webutil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"arcana_lab/internal/model"
)

// maxBodyBytes はリクエストボディの上限です。
const maxBodyBytes = 1 << 20

// DecodeJSONBody はリクエストボディを dst にデコードします。
// 未知のフィールドや複数の JSON 値は入力不正として扱います。
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return model.NewValidationError("body", "요청 바디가 비어 있습니다.")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return model.NewValidationError("body", "요청 바디가 비어 있습니다.")
		case errors.As(err, &typeErr):
			return model.NewValidationError(typeErr.Field, fmt.Sprintf("%s 값의 형식이 올바르지 않습니다.", typeErr.Field))
		case strings.Contains(err.Error(), "unknown field"):
			return model.NewValidationError("body", "허용되지 않은 필드가 포함되어 있습니다.").WithDetail("reason", err.Error())
		default:
			return model.NewValidationError("body", "요청 바디가 올바르지 않습니다.").WithDetail("reason", err.Error())
		}
	}
	if decoder.More() {
		return model.NewValidationError("body", "요청 바디에는 JSON 객체 하나만 허용됩니다.")
	}
	return nil
}
