package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pribylovaa/equiptrack-gateway/internal/clients/interceptors"
	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
)

// Auth — вызовы входа и обновления токена. Не проходит через шлюз:
// 401 здесь означает отказ, а не повод для refresh.
type Auth struct {
	http *http.Client
	base string
}

// Login — POST /login/ {username, password} -> {access, refresh}.
func (a *Auth) Login(ctx context.Context, username, password string) (models.TokenPair, error) {
	const op = "clients/Auth.Login"

	var out models.TokenPair
	if err := a.post(ctx, "/login/", models.LoginRequest{Username: username, Password: password}, &out); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if out.Access == "" {
		return models.TokenPair{}, fmt.Errorf("%s: empty access token", op)
	}

	return out, nil
}

// Refresh — POST /token/refresh/ {refresh} -> {access[, refresh]}.
func (a *Auth) Refresh(ctx context.Context, refresh string) (interceptors.RefreshResult, error) {
	const op = "clients/Auth.Refresh"

	var out models.RefreshResponse
	if err := a.post(ctx, "/token/refresh/", models.RefreshRequest{Refresh: refresh}, &out); err != nil {
		return interceptors.RefreshResult{}, fmt.Errorf("%s: %w", op, err)
	}

	return interceptors.RefreshResult{AccessToken: out.Access, RefreshToken: out.Refresh}, nil
}

func (a *Auth) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body, maxBody)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gwerrors.FromResponse(resp.StatusCode, data)
	}

	return json.Unmarshal(data, out)
}

var _ interceptors.Refresher = (*Auth)(nil)
