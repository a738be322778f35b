package handler

import (
	"encoding/json"
	"net/http"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

// Boundary-only error kinds, alongside roster.Kind values.
const (
	kindBadRequest  = "bad_request"
	kindTooLarge    = "too_large"
	kindRateLimited = "rate_limited"
)

const (
	messageBadRequest  = "リクエストの形式が正しくありません。"
	messageTooLarge    = "ファイルサイズが上限を超えています。"
	messageRateLimited = "リクエストが多すぎます。しばらくしてから再度お試しください。"
)

var messages = map[roster.Kind]string{
	roster.KindNoTable:        "PDFから勤務表を検出できませんでした。",
	roster.KindNoDateHeader:   "日付の列（例: 4/1）が見つかりませんでした。",
	roster.KindNoNameColumn:   "氏名の列が見つかりませんでした。",
	roster.KindPersonNotFound: "指定された氏名が勤務表に見つかりませんでした。",
	roster.KindCodeMapping:    "勤務コード表を読み込めませんでした。",
	roster.KindMalformedValue: "日付または時刻の形式が正しくありません。",
	roster.KindInternal:       "サーバー内部でエラーが発生しました。",
}

func statusFor(kind roster.Kind) int {
	switch kind {
	case roster.KindNoTable, roster.KindNoDateHeader, roster.KindNoNameColumn, roster.KindMalformedValue:
		return http.StatusUnprocessableEntity
	case roster.KindPersonNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind        string   `json:"kind"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func writeError(w http.ResponseWriter, status int, kind, message string, suggestions []string) {
	writeJSON(w, status, errorBody{Error: errorDetail{
		Kind:        kind,
		Message:     message,
		Suggestions: suggestions,
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
