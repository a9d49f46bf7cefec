// Package services provides external service integrations and technical concerns for the send engine
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wasend/wasend/utils"
)

// SessionState represents the lifecycle state of the channel session
type SessionState string

const (
	SessionStateUninitialized SessionState = "uninitialized"
	SessionStatePairing       SessionState = "pairing"
	SessionStateReady         SessionState = "ready"
	SessionStateDisconnected  SessionState = "disconnected"
)

// String returns the string representation of the state
func (s SessionState) String() string {
	return string(s)
}

// Gateway errors
var (
	ErrChannelNotReady = errors.New("channel session is not ready")
	ErrUnresolved      = errors.New("recipient is not registered on the channel")
	ErrChatNotFound    = errors.New("chat handle not found")
)

// MediaOptions controls how a media attachment is delivered
type MediaOptions struct {
	Caption       string
	AsDocument    bool
	MediaTypeHint string
	DisableGIF    bool
}

// ChannelGateway exposes the single authenticated messaging session the send
// engine delivers through. One session exists per process; the session's own
// lifecycle (pairing, reconnection) is owned by a supervisor outside the
// engine, which only ever consumes this interface.
type ChannelGateway interface {
	State(ctx context.Context) SessionState
	IsReady(ctx context.Context) bool
	IsAuthenticated(ctx context.Context) bool
	ResolveAddress(ctx context.Context, digits string) (string, error)
	GetChatHandle(ctx context.Context, address string) (string, error)
	SendText(ctx context.Context, handle, text string) error
	SendMedia(ctx context.Context, handle, filePath string, opts MediaOptions) error
}

// MockChannelGateway implements ChannelGateway for testing
type MockChannelGateway struct {
	mu sync.Mutex

	Ready         bool
	Authenticated bool

	// Remaining failures per chat handle before sends start succeeding
	SendFailures map[string]int
	// Remaining failures per address before resolution starts succeeding
	ResolveFailures map[string]int
	// Addresses the channel reports as unregistered
	Unregistered map[string]bool

	SentMessages []MockDelivery
	StateCalls   int
	ResolveCalls int
	HandleCalls  int
}

// MockDelivery records one delivery accepted by the mock gateway
type MockDelivery struct {
	Handle   string
	Text     string
	FilePath string
	Options  MediaOptions
	SentAt   time.Time
}

// NewMockChannelGateway creates a ready, authenticated mock gateway
func NewMockChannelGateway() *MockChannelGateway {
	return &MockChannelGateway{
		Ready:           true,
		Authenticated:   true,
		SendFailures:    make(map[string]int),
		ResolveFailures: make(map[string]int),
		Unregistered:    make(map[string]bool),
	}
}

func (m *MockChannelGateway) State(ctx context.Context) SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StateCalls++
	if m.Ready {
		return SessionStateReady
	}
	return SessionStateDisconnected
}

func (m *MockChannelGateway) IsReady(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Ready
}

func (m *MockChannelGateway) IsAuthenticated(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Authenticated
}

func (m *MockChannelGateway) ResolveAddress(ctx context.Context, digits string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolveCalls++
	if m.Unregistered[digits] {
		return "", ErrUnresolved
	}
	if m.ResolveFailures[digits] > 0 {
		m.ResolveFailures[digits]--
		return "", ErrUnresolved
	}
	return digits + utils.ChannelSuffix, nil
}

func (m *MockChannelGateway) GetChatHandle(ctx context.Context, address string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HandleCalls++
	if m.Unregistered[utils.BareDigits(address)] {
		return "", ErrChatNotFound
	}
	return address, nil
}

func (m *MockChannelGateway) SendText(ctx context.Context, handle, text string) error {
	return m.record(handle, text, "", MediaOptions{})
}

func (m *MockChannelGateway) SendMedia(ctx context.Context, handle, filePath string, opts MediaOptions) error {
	return m.record(handle, opts.Caption, filePath, opts)
}

func (m *MockChannelGateway) record(handle, text, filePath string, opts MediaOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendFailures[handle] > 0 {
		m.SendFailures[handle]--
		return errors.New("mock send failure")
	}
	m.SentMessages = append(m.SentMessages, MockDelivery{
		Handle:   handle,
		Text:     text,
		FilePath: filePath,
		Options:  opts,
		SentAt:   time.Now().UTC(),
	})
	return nil
}

// Deliveries returns a copy of the accepted deliveries
func (m *MockChannelGateway) Deliveries() []MockDelivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockDelivery, len(m.SentMessages))
	copy(out, m.SentMessages)
	return out
}
