package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"
)

func startHealthServer(t *testing.T) (*HealthServer, string, context.CancelFunc) {
	t.Helper()

	// Grab a free port so parallel test runs do not collide.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	server := NewHealthServer(addr, slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = server.Start(ctx)
	}()

	// Wait for the server to come up.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			_ = conn.Close()
			return server, addr, cancel
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	t.Fatal("health server did not start in time")
	return nil, "", nil
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestHealthServer_Liveness(t *testing.T) {
	_, addr, cancel := startHealthServer(t)
	defer cancel()

	status, body := get(t, fmt.Sprintf("http://%s/health", addr))
	if status != http.StatusOK {
		t.Errorf("liveness status = %d, want %d", status, http.StatusOK)
	}
	if body == "" {
		t.Error("liveness body is empty")
	}
}

func TestHealthServer_Readiness(t *testing.T) {
	server, addr, cancel := startHealthServer(t)
	defer cancel()

	url := fmt.Sprintf("http://%s/health/ready", addr)

	status, _ := get(t, url)
	if status != http.StatusServiceUnavailable {
		t.Errorf("readiness before SetReady = %d, want %d", status, http.StatusServiceUnavailable)
	}

	server.SetReady(true)
	status, _ = get(t, url)
	if status != http.StatusOK {
		t.Errorf("readiness after SetReady = %d, want %d", status, http.StatusOK)
	}

	server.SetReady(false)
	status, _ = get(t, url)
	if status != http.StatusServiceUnavailable {
		t.Errorf("readiness after unready = %d, want %d", status, http.StatusServiceUnavailable)
	}
}
