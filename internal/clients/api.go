package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/pribylovaa/equiptrack-gateway/internal/clients/interceptors"
	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
)

// maxBody — предел чтения JSON-ответа; выгрузки читаются до maxDownload.
const (
	maxBody     = 4 << 20
	maxDownload = 64 << 20
)

// ErrResponseTooLarge — тело ответа API больше допустимого предела.
var ErrResponseTooLarge = errors.New("upstream response too large")

// readLimited читает тело целиком, но не больше limit байт.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, limit)
	}

	return data, nil
}

// API — ресурсы EquipTrack через шлюз обновления сессии.
// Тела запросов собираются в памяти: шлюз должен уметь их повторить.
type API struct {
	http *http.Client
	base string
}

// BaseURL — адрес API без завершающего слэша.
func (a *API) BaseURL() string { return a.base }

func (a *API) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*http.Response, error) {
	u := a.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		if errors.Is(err, interceptors.ErrRefreshFailed) {
			return nil, fmt.Errorf("%w: %w", gwerrors.ErrUnauthenticated, err)
		}
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		// Слишком большое тело ошибки не разбираем: статуса достаточно.
		data, _ := readLimited(resp.Body, maxBody)
		return nil, gwerrors.FromResponse(resp.StatusCode, data)
	}

	return resp, nil
}

func (a *API) read(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) ([]byte, error) {
	resp, err := a.do(ctx, method, path, query, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readLimited(resp.Body, maxBody)
}

func (a *API) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, err := a.read(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}

	return json.Unmarshal(data, out)
}

func (a *API) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	data, err := a.read(ctx, http.MethodPost, path, nil, body, "application/json")
	if err != nil {
		return err
	}

	return json.Unmarshal(data, out)
}

func (a *API) postForm(ctx context.Context, path string, form models.Form, out any) error {
	body, contentType, err := encodeForm(form)
	if err != nil {
		return err
	}

	data, err := a.read(ctx, http.MethodPost, path, nil, body, contentType)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, out)
}

// list — GET списка с разворачиванием {results: [...]}.
func list[T any](ctx context.Context, a *API, path string, query url.Values) ([]T, error) {
	data, err := a.read(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, err
	}

	return models.DecodeList[T](data)
}

// download — бинарный ответ; имя файла из Content-Disposition или fallback.
func (a *API) download(ctx context.Context, path string, query url.Values, fallback string) (models.Download, error) {
	resp, err := a.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return models.Download{}, err
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body, maxDownload)
	if err != nil {
		return models.Download{}, err
	}

	name := fallback
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}

	return models.Download{FileName: name, ContentType: ct, Data: data}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeForm собирает multipart/form-data в памяти.
func encodeForm(form models.Form) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range form.Fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}

	for _, ff := range form.Files {
		ct := ff.File.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		name := ff.File.Name
		if name == "" {
			name = ff.Field
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(ff.Field), quoteEscaper.Replace(name)))
		h.Set("Content-Type", ct)

		w, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := w.Write(ff.File.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), mw.FormDataContentType(), nil
}
