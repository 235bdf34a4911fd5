// Command healthcheck is the container HEALTHCHECK for codeconvert. It exits 0
// when GET /api/health answers 200 with status "ok" and 1 otherwise.
//
// The server address comes from CODECONVERT_LISTEN_ADDR, the same variable the
// server binds to, so one environment serves both binaries.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

const (
	listenAddrEnv = "CODECONVERT_LISTEN_ADDR"
	defaultAddr   = "127.0.0.1:5000"
	healthPath    = "/api/health"
	probeTimeout  = 2 * time.Second
)

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	url := "http://" + normalizeAddr(os.Getenv(listenAddrEnv)) + healthPath
	if err := check(ctx, &http.Client{Timeout: probeTimeout}, url); err != nil {
		fmt.Fprintf(os.Stderr, "healthcheck: %v\n", err)
		os.Exit(1)
	}
}

// check requests url and fails unless the server reports itself healthy.
func check(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body healthBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return fmt.Errorf("decode %s: %w", healthPath, err)
	}

	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return fmt.Errorf("%s returned %d (status %q, database %q)", healthPath, resp.StatusCode, body.Status, body.Database)
	}
	return nil
}

// normalizeAddr turns a server bind address into one the probe can dial.
// Wildcard hosts ("", 0.0.0.0, ::) become loopback since the probe runs in
// the server's container; unparsable values fall back to defaultAddr.
func normalizeAddr(listenAddr string) string {
	if listenAddr == "" {
		return defaultAddr
	}

	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil || port == "" {
		return defaultAddr
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
