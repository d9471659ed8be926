package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated — сессии нет или её не удалось восстановить.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// UpstreamError — не-2xx ответ EquipTrack API.
// Detail — человекочитаемое сообщение сервера (detail, non_field_errors
// или первая ошибка поля), может быть пустым.
type UpstreamError struct {
	Status int
	Detail string
	Body   []byte
}

func (e *UpstreamError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("upstream status %d: %s", e.Status, e.Detail)
	}

	return fmt.Sprintf("upstream status %d", e.Status)
}

// Is позволяет проверять 401 апстрима через errors.Is(err, ErrUnauthenticated).
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUnauthenticated && e.Status == http.StatusUnauthorized
}

// FromResponse строит UpstreamError из статуса и тела ответа.
func FromResponse(status int, body []byte) *UpstreamError {
	return &UpstreamError{Status: status, Detail: detailOf(body), Body: body}
}

// detailOf достаёт сообщение из тела ошибки сервера:
//  1. {"detail": "..."};
//  2. {"non_field_errors": ["...", ...]};
//  3. {"field": ["..."]} — первая по алфавиту ошибка поля, "field: ...";
//  4. ["..."] — ошибка валидации без поля.
func detailOf(body []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		var list []string
		if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
			return list[0]
		}
		return ""
	}

	var s string
	if raw, ok := obj["detail"]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
		return s
	}

	if msg := firstString(obj["non_field_errors"]); msg != "" {
		return msg
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if msg := firstString(obj[k]); msg != "" {
			return k + ": " + msg
		}
	}

	return ""
}

func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	return ""
}

// Message — сообщение для оператора: detail сервера, иначе fallback.
func Message(err error, fallback string) string {
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.Detail != "" {
		return ue.Detail
	}

	var ie *InputError
	if errors.As(err, &ie) && ie.Message != "" {
		return ie.Message
	}

	return fallback
}

// InputError — некорректный входной запрос, отклонённый до похода в API.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return "invalid input: " + e.Message }

// Invalid создаёт InputError.
func Invalid(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}
