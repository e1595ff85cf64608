// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-conn-sync/internal/config"
	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/utils"
	"github.com/MKhiriev/go-conn-sync/models"
)

const (
	uploadPath   = "/api/sync/upload"
	downloadPath = "/api/sync/download"
	healthPath   = "/api/health"

	// HashHeader carries the hex HMAC-SHA256 of the request or response body.
	HashHeader = "HashSHA256"
	// DeviceHeader names the calling device.
	DeviceHeader = "X-Device-ID"
	// CycleHeader carries the id of the sync cycle issuing the request.
	CycleHeader = "X-Sync-Cycle"

	maxHealthTimeout = 5 * time.Second
	tokenLeeway      = 10 * time.Second
)

type httpTransport struct {
	client *utils.HTTPClient
	hasher *utils.Hasher

	healthTimeout time.Duration
	now           func() time.Time

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPTransport constructs an HTTP/REST implementation of [Transport].
// It normalises and validates the base URL from adapterCfg.HTTPAddress,
// configures the underlying HTTP client with the resolved base URL and request
// timeout, and keys the body signer with appCfg.HashKey.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPTransport(adapterCfg config.ClientAdapter, appCfg config.ClientApp, userAgent string, logger *logger.Logger) (Transport, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient(
		utils.WithBaseURL(baseURL),
		utils.WithTimeout(adapterCfg.RequestTimeout),
		utils.WithUserAgent(userAgent),
	)

	healthTimeout := maxHealthTimeout
	if adapterCfg.RequestTimeout > 0 && adapterCfg.RequestTimeout < healthTimeout {
		healthTimeout = adapterCfg.RequestTimeout
	}

	t := &httpTransport{
		client:        client,
		hasher:        utils.NewHasher(appCfg.HashKey),
		healthTimeout: healthTimeout,
		now:           time.Now,
		logger:        logger,
	}
	t.SetToken(adapterCfg.Token)
	if sub, err := utils.TokenSubject(t.Token()); err == nil && sub != "" {
		logger.Debug().Str("subject", sub).Msg("sync transport authenticated")
	}
	return t, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [Transport]. It stores token (whitespace-trimmed) for
// use in the Authorization header of all subsequent requests. A full
// "Bearer <token>" header value is accepted as well.
func (h *httpTransport) SetToken(token string) {
	token = strings.TrimSpace(token)
	if bare, err := utils.ParseBearerToken(token); err == nil {
		token = bare
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

// Token implements [Transport].
func (h *httpTransport) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Upload implements [Transport]. It signs the serialized changes into
// req.Hash, sets req.Length and POSTs the request to POST /api/sync/upload
// with the HMAC of the exact body in the HashSHA256 header.
func (h *httpTransport) Upload(ctx context.Context, req models.UploadRequest) (models.UploadResult, error) {
	log := logger.FromContext(ctx)

	req.Length = len(req.Changes)
	req.DeviceID = h.deviceID(ctx, req.DeviceID)
	if h.hasher.Enabled() {
		changes, err := json.Marshal(req.Changes)
		if err != nil {
			return models.UploadResult{}, fmt.Errorf("encode upload changes: %w", err)
		}
		req.Hash = h.hasher.Hex(changes)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("encode upload request: %w", err)
	}

	r, err := h.authedRequest(ctx, req.DeviceID)
	if err != nil {
		return models.UploadResult{}, err
	}
	if h.hasher.Enabled() {
		r.SetHeader(HashHeader, h.hasher.Hex(body))
	}

	resp, err := r.
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(uploadPath)
	if err != nil {
		log.Err(err).Str("func", "httpTransport.Upload").Int("changes", req.Length).Msg("upload request failed")
		return models.UploadResult{}, fmt.Errorf("%w: upload request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		log.Warn().Err(err).Str("func", "httpTransport.Upload").Int("status", resp.StatusCode()).Msg("upload rejected")
		return models.UploadResult{}, err
	}
	if err = h.verify(resp); err != nil {
		return models.UploadResult{}, err
	}

	var result models.UploadResult
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return models.UploadResult{}, fmt.Errorf("%w: decode upload response: %w", ErrInvalidResponse, err)
	}

	return result, nil
}

// Download implements [Transport]. It GETs
// GET /api/sync/download?cursor=&limit= and decodes the batch.
func (h *httpTransport) Download(ctx context.Context, req models.DownloadRequest) (models.DownloadResult, error) {
	log := logger.FromContext(ctx)

	r, err := h.authedRequest(ctx, h.deviceID(ctx, req.DeviceID))
	if err != nil {
		return models.DownloadResult{}, err
	}

	params := map[string]string{"cursor": req.Cursor}
	if req.Limit > 0 {
		params["limit"] = strconv.Itoa(req.Limit)
	}

	resp, err := r.SetQueryParams(params).Get(downloadPath)
	if err != nil {
		log.Err(err).Str("func", "httpTransport.Download").Str("cursor", req.Cursor).Msg("download request failed")
		return models.DownloadResult{}, fmt.Errorf("%w: download request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		log.Warn().Err(err).Str("func", "httpTransport.Download").Int("status", resp.StatusCode()).Msg("download rejected")
		return models.DownloadResult{}, err
	}
	if err = h.verify(resp); err != nil {
		return models.DownloadResult{}, err
	}

	var result models.DownloadResult
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return models.DownloadResult{}, fmt.Errorf("%w: decode download response: %w", ErrInvalidResponse, err)
	}

	return result, nil
}

// Health implements [Transport]. It GETs /api/health with a short timeout and
// reports whether the service answered 2xx.
func (h *httpTransport) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.healthTimeout)
	defer cancel()

	resp, err := h.client.R().SetContext(ctx).Get(healthPath)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Str("func", "httpTransport.Health").Msg("sync service unreachable")
		return false
	}
	return mapHTTPError(resp) == nil
}

// authedRequest builds a request carrying the bearer token and device id.
// A JWT that has already expired is refused locally.
func (h *httpTransport) authedRequest(ctx context.Context, deviceID string) (*resty.Request, error) {
	req := h.client.R().SetContext(ctx)

	token := h.Token()
	if token != "" {
		if looksLikeJWT(token) && utils.TokenExpired(token, h.now(), tokenLeeway) {
			return nil, fmt.Errorf("%w: token expired", ErrUnauthorized)
		}
		req.SetAuthToken(token)
	}
	if deviceID != "" {
		req.SetHeader(DeviceHeader, deviceID)
	}
	if cycleID, ok := utils.GetCycleIDFromContext(ctx); ok {
		req.SetHeader(CycleHeader, cycleID)
	}
	return req, nil
}

// verify checks the response signature when the service sends one.
func (h *httpTransport) verify(resp *resty.Response) error {
	signature := resp.Header().Get(HashHeader)
	if signature == "" || !h.hasher.Enabled() {
		return nil
	}
	if !h.hasher.Verify(resp.Body(), signature) {
		return ErrIntegrity
	}
	return nil
}

func (h *httpTransport) deviceID(ctx context.Context, fallback string) string {
	if fallback != "" {
		return fallback
	}
	id, _ := utils.GetDeviceIDFromContext(ctx)
	return id
}

func looksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}
