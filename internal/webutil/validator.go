package webutil

import (
	"errors"
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"arcana_lab/internal/model"
)

// Validator はアプリケーション全体で共有されるバリデータインスタンスです。
var Validator *validator.Validate

// Trans はエラーメッセージを翻訳するためのトランスレータです。
var Trans ut.Translator

// クライアント向けメッセージで使うフィールド表示名
var fieldNameTranslations = map[string]string{
	"cardCount": "카드 수",
	"query":     "검색어",
	"arcana":    "아르카나",
	"suit":      "슈트",
	"limit":     "개수",
	"start":     "시작일",
	"end":       "종료일",
	"date":      "날짜",
}

func init() {
	Validator = validator.New()

	// JSONタグからフィールド名を取得するように設定
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	var found bool
	Trans, found = uni.GetTranslator("en")
	if !found {
		log.Fatal("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	// 画面に出るメッセージは韓国語で上書きする
	registerTranslation("required", "{0}은(는) 필수 항목입니다.", false)
	registerTranslation("min", "{0}은(는) {1} 이상이어야 합니다.", true)
	registerTranslation("max", "{0}은(는) {1} 이하여야 합니다.", true)
	registerTranslation("oneof", "{0}은(는) [{1}] 중 하나여야 합니다.", true)
	registerTranslation("datetime", "{0}은(는) YYYY-MM-DD 형식이어야 합니다.", false)
}

func registerTranslation(tag, msg string, withParam bool) {
	err := Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
		return ut.Add(tag, msg, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		fieldName := fe.Field()
		if translated, ok := fieldNameTranslations[fieldName]; ok {
			fieldName = translated
		}
		var t string
		if withParam {
			t, _ = ut.T(tag, fieldName, fe.Param())
		} else {
			t, _ = ut.T(tag, fieldName)
		}
		return t
	})
	if err != nil {
		log.Fatal(err)
	}
}

// ValidateStruct は構造体を検証し、失敗時は入力不正の AppError を返します。
func ValidateStruct(s interface{}) error {
	err := Validator.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationErrorResponse(validationErrors)
	}
	return err
}

// NewValidationErrorResponse はバリデーションエラーを 1 つの AppError にまとめます。
func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	fields := make([]string, 0, len(errs))
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field())
		messages = append(messages, fe.Translate(Trans))
	}
	return model.NewValidationError(strings.Join(fields, ","), strings.Join(messages, " "))
}
