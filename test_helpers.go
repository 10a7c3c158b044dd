package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"go-mrz-scanner/document/mrz"

	"github.com/stretchr/testify/require"
)

const (
	testTD3Mrz          = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\nL898902C36UTO7408122F1204159ZE184226B<<<<<10"
	// birth day and month unknown, accepted through the composite check
	testUnknownBirthMrz = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\nL898902C36UTO7400<<1F1204159ZE184226B<<<<<18"
	testTD1Mrz          = "I<UTOD231458907<<<<<<<<<<<<<<<\n7408122F1204159UTO<<<<<<<<<<<6\nERIKSSON<<ANNA<MARIA<<<<<<<<<<"

	testBaseUrl = "http://localhost:8081"
)

var testConfig = ServerConfig{
	Host:           "localhost",
	Port:           8081,
	UseTls:         false,
	TlsCertPath:    "",
	TlsPrivKeyPath: "",
}

type testServerOpt func(*ServerState)

func withReceiptSigner(signer ReceiptSigner) testServerOpt {
	return func(s *ServerState) { s.receiptSigner = signer }
}

func withPublisher(publisher *recordingPublisher) testServerOpt {
	return func(s *ServerState) { s.publisher = publisher }
}

func startTestServer(t *testing.T, storage SessionStorage, opts ...testServerOpt) *Server {
	t.Helper()

	testState := &ServerState{
		sessionStorage: storage,
		publisher:      &recordingPublisher{},
	}
	for _, o := range opts {
		o(testState)
	}

	srv, err := NewServer(testState, testConfig)
	require.NoError(t, err)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("server error: %v", err)
		}
	}()

	waitUntilHealthy(t, testBaseUrl+"/api/health")
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Logf("error shutting down server: %v", err)
		}
	})
	return srv
}

func waitUntilHealthy(t *testing.T, url string) {
	t.Helper()
	const maxAttempts = 50
	for i := 0; i < maxAttempts; i++ {
		if resp, err := http.Get(url); err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server did not start in time")
}

func postJSON[T any](t *testing.T, url string, payload any) (*http.Response, []byte, *T) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	}
	resp, err := http.Post(url, "application/json", body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var v T
	_ = json.Unmarshal(respBody, &v)

	return resp, respBody, &v
}

func mustStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	require.Equalf(t, want, resp.StatusCode, "body: %s", body)
}

// start-scan bootstrap
func startScan(t *testing.T) string {
	t.Helper()
	type startResp struct {
		SessionId string `json:"session_id"`
	}
	resp, body, sr := postJSON[startResp](t, testBaseUrl+"/api/start-scan", nil)
	mustStatus(t, resp, http.StatusOK, body)
	require.Len(t, sr.SessionId, 32)
	return sr.SessionId
}

// fakes ------------

type fakeReceiptSigner struct {
	receipt string
	err     error
}

func (f fakeReceiptSigner) CreateScanReceipt(_ string, _ *mrz.Record) (string, error) {
	return f.receipt, f.err
}

type publishedEvent struct {
	eventType string
	data      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, data: data})
	return p.err
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}
