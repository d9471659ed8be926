package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DecodeList разворачивает ответ списка: голый JSON-массив или
// постраничный объект {"results": [...]}. Прочие формы дают пустой список.
func DecodeList[T any](body []byte) ([]T, error) {
	const op = "models/DecodeList"

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []T{}, nil
	}

	var raw json.RawMessage
	switch body[0] {
	case '[':
		raw = body
	case '{':
		var page struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(page.Results) == 0 || page.Results[0] != '[' {
			return []T{}, nil
		}
		raw = page.Results
	default:
		return []T{}, nil
	}

	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// MediaURL делает путь к медиафайлу абсолютным: абсолютные URL не меняются,
// относительные получают префикс сервера API (без суффикса /api).
func MediaURL(apiBase, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	base := apiBase
	switch {
	case strings.HasSuffix(base, "/api/"):
		base = strings.TrimSuffix(base, "/api/")
	case strings.HasSuffix(base, "/api"):
		base = strings.TrimSuffix(base, "/api")
	}

	return base + path
}

// isoLayout — ISO 8601 в UTC с миллисекундами.
const isoLayout = "2006-01-02T15:04:05.000Z"

// ISODate переводит дату формы "2006-01-02" (полночь по местному времени)
// в ISO 8601 UTC. Пустое значение — "" (поле не отправляется).
func ISODate(value string) (string, error) {
	return ISODateIn(value, time.Local)
}

// ISODateIn — ISODate для явной временной зоны оператора.
func ISODateIn(value string, loc *time.Location) (string, error) {
	const op = "models/ISODate"

	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	t, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return t.UTC().Format(isoLayout), nil
}

// ResolveMedia переводит пути медиа агента в абсолютные URL.
func (a *Agent) ResolveMedia(apiBase string) {
	a.IDDocument = MediaURL(apiBase, a.IDDocument)
}

func (e *Equipement) ResolveMedia(apiBase string) {
	e.QRCodeImage = MediaURL(apiBase, e.QRCodeImage)
}

func (a *Affectation) ResolveMedia(apiBase string) {
	a.Signature = MediaURL(apiBase, a.Signature)
	a.EquipementPhoto = MediaURL(apiBase, a.EquipementPhoto)
	if a.EquipementDetail != nil {
		a.EquipementDetail.ResolveMedia(apiBase)
	}
	if a.AgentDetail != nil {
		a.AgentDetail.ResolveMedia(apiBase)
	}
}

func (r *Restitution) ResolveMedia(apiBase string) {
	r.EquipementPhoto = MediaURL(apiBase, r.EquipementPhoto)
	if r.AffectationDetail != nil {
		r.AffectationDetail.ResolveMedia(apiBase)
	}
}
