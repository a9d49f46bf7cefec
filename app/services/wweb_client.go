package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/wasend/wasend/config"
)

// WWebClient talks to the whatsapp-web bridge sidecar that owns the actual
// authenticated session. All calls are plain JSON over HTTP; the bridge is
// expected to run next to this process.
type WWebClient struct {
	cfg    *config.ChannelConfig
	client *http.Client

	mu          sync.Mutex
	state       SessionState
	authed      bool
	stateAsOf   time.Time
	stateMaxAge time.Duration
}

type bridgeStatusResponse struct {
	State         string `json:"state"`
	Authenticated bool   `json:"authenticated"`
}

type bridgeContactResponse struct {
	Registered bool   `json:"registered"`
	JID        string `json:"jid"`
}

type bridgeChatResponse struct {
	ID string `json:"id"`
}

type bridgeSendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewWWebClient creates a new bridge client
func NewWWebClient(cfg *config.ChannelConfig) *WWebClient {
	maxAge := cfg.StatusCacheTTL
	if maxAge <= 0 {
		maxAge = 2 * time.Second
	}
	return &WWebClient{
		cfg:         cfg,
		client:      &http.Client{Timeout: cfg.Timeout},
		state:       SessionStateUninitialized,
		stateMaxAge: maxAge,
	}
}

// State returns the bridge session state, refreshed at most once per cache window
func (w *WWebClient) State(ctx context.Context) SessionState {
	w.mu.Lock()
	fresh := time.Since(w.stateAsOf) < w.stateMaxAge
	state := w.state
	w.mu.Unlock()
	if fresh {
		return state
	}

	status, err := w.fetchStatus(ctx)
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = SessionStateDisconnected
		w.authed = false
	} else {
		w.state = SessionState(status.State)
		w.authed = status.Authenticated
	}
	w.stateAsOf = time.Now()
	return w.state
}

// IsReady reports whether the session can accept sends
func (w *WWebClient) IsReady(ctx context.Context) bool {
	return w.State(ctx) == SessionStateReady
}

// IsAuthenticated reports whether the session holds valid credentials
func (w *WWebClient) IsAuthenticated(ctx context.Context) bool {
	w.State(ctx)
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.authed
}

func (w *WWebClient) fetchStatus(ctx context.Context) (*bridgeStatusResponse, error) {
	req, err := w.newRequest(ctx, http.MethodGet, "/api/session/status", nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge status request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bridge status http status: %d", resp.StatusCode)
	}

	var out bridgeStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode bridge status: %w", err)
	}
	return &out, nil
}

// ResolveAddress asks the channel whether the digits map to a registered account
func (w *WWebClient) ResolveAddress(ctx context.Context, digits string) (string, error) {
	req, err := w.newRequest(ctx, http.MethodGet, "/api/contacts/"+url.PathEscape(digits), nil, "")
	if err != nil {
		return "", err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("bridge resolve request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", ErrUnresolved
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bridge resolve http status: %d", resp.StatusCode)
	}

	var out bridgeContactResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode bridge contact: %w", err)
	}
	if !out.Registered || out.JID == "" {
		return "", ErrUnresolved
	}
	return out.JID, nil
}

// GetChatHandle obtains the chat the channel uses for an address
func (w *WWebClient) GetChatHandle(ctx context.Context, address string) (string, error) {
	req, err := w.newRequest(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(address), nil, "")
	if err != nil {
		return "", err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("bridge chat request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", ErrChatNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bridge chat http status: %d", resp.StatusCode)
	}

	var out bridgeChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode bridge chat: %w", err)
	}
	if out.ID == "" {
		return "", ErrChatNotFound
	}
	return out.ID, nil
}

// SendText delivers a text message to a chat
func (w *WWebClient) SendText(ctx context.Context, handle, text string) error {
	payload, err := json.Marshal(map[string]string{"body": text})
	if err != nil {
		return fmt.Errorf("failed to marshal text payload: %w", err)
	}

	req, err := w.newRequest(ctx, http.MethodPost, "/api/chats/"+url.PathEscape(handle)+"/messages/text", bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	return w.doSend(req)
}

// SendMedia streams a local media file to a chat with the requested options
func (w *WWebClient) SendMedia(ctx context.Context, handle, filePath string, opts MediaOptions) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("failed to create multipart file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read media file: %w", err)
	}

	fields := map[string]string{
		"caption":     opts.Caption,
		"as_document": strconv.FormatBool(opts.AsDocument),
		"disable_gif": strconv.FormatBool(opts.DisableGIF),
	}
	if opts.MediaTypeHint != "" {
		fields["media_type"] = opts.MediaTypeHint
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write multipart field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := w.newRequest(ctx, http.MethodPost, "/api/chats/"+url.PathEscape(handle)+"/messages/media", &body, mw.FormDataContentType())
	if err != nil {
		return err
	}
	return w.doSend(req)
}

func (w *WWebClient) doSend(req *http.Request) error {
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge send request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bridge send http status: %d", resp.StatusCode)
	}

	var out bridgeSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode bridge send response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("bridge rejected send: %s", out.Error)
	}
	return nil
}

func (w *WWebClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, w.cfg.BridgeURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if w.cfg.APIKey != "" {
		req.Header.Set("x-api-key", w.cfg.APIKey)
	}
	return req, nil
}
