// errors стандартизирует ответы об ошибках HTTP-слоя backoffice-gateway.
// На вход он принимает ошибку (ответ EquipTrack API, сбой транспорта,
// потерю сессии, некорректный ввод), а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей;
//   - redirect на страницу входа, если сессия потеряна.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// LoginPath — точка входа для неаутентифицированного оператора.
const LoginPath = "/login"

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
// Redirect — куда перейти браузеру (только при потере сессии).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует входную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - ErrUnauthenticated (в т.ч. 401 апстрима) — 401 + redirect на /login;
//   - InputError — 400 с сообщением валидации;
//   - UpstreamError — статус по таблице fromUpstream, message из detail для 4xx;
//   - отмена/дедлайн контекста — 499/504;
//   - сетевые ошибки — 503/unavailable;
//   - прочее — 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse("internal", "internal error")
	}

	if errors.Is(err, ErrUnauthenticated) {
		resp := errorResponse("unauthenticated", Message(err, "unauthenticated"))
		resp.Error.Redirect = LoginPath
		return http.StatusUnauthorized, resp
	}

	var ie *InputError
	if errors.As(err, &ie) {
		return http.StatusBadRequest, errorResponse("invalid_argument", ie.Message)
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		status, code, msg := fromUpstream(ue.Status)
		if ue.Status < http.StatusInternalServerError && ue.Detail != "" {
			msg = ue.Detail
		}
		return status, errorResponse(code, msg)
	}

	switch {
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, errorResponse("canceled", "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse("deadline_exceeded", "deadline exceeded")
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return http.StatusServiceUnavailable, errorResponse("unavailable", "service unavailable")
	}

	return http.StatusInternalServerError, errorResponse("internal", "internal error")
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)
	Write(w, r, status, resp)
}

// Write пишет готовый ответ об ошибке с request_id запроса.
func Write(w http.ResponseWriter, r *http.Request, status int, resp ErrorResponse) {
	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// NewResponse собирает тело ответа об ошибке.
func NewResponse(code, msg string) ErrorResponse {
	return errorResponse(code, msg)
}

func errorResponse(code, msg string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// fromUpstream — маппинг статуса EquipTrack API -> HTTP/FE-код/сообщение:
//   - 400 (ошибки валидации сериализатора) -> 400
//   - 403 (роль не позволяет) -> 403
//   - 404 -> 404
//   - 405 -> 405
//   - 409 -> 409
//   - 413 (слишком большой файл) -> 413
//   - 415 -> 415
//   - 429 -> 429
//   - 5xx -> 502 (апстрим сломан, детали не раскрываем)
//   - прочее -> 500/internal
func fromUpstream(status int) (int, string, string) {
	switch {
	case status == http.StatusBadRequest:
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case status == http.StatusForbidden:
		return http.StatusForbidden, "permission_denied", "permission denied"
	case status == http.StatusNotFound:
		return http.StatusNotFound, "not_found", "not found"
	case status == http.StatusMethodNotAllowed:
		return http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed"
	case status == http.StatusConflict:
		return http.StatusConflict, "already_exists", "already exists"
	case status == http.StatusRequestEntityTooLarge:
		return http.StatusRequestEntityTooLarge, "too_large", "payload too large"
	case status == http.StatusUnsupportedMediaType:
		return http.StatusUnsupportedMediaType, "unsupported_media_type", "unsupported media type"
	case status == http.StatusTooManyRequests:
		return http.StatusTooManyRequests, "resource_exhausted", "resource exhausted"
	case status >= http.StatusInternalServerError:
		return http.StatusBadGateway, "bad_gateway", "upstream error"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
