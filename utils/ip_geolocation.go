package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultGeoEndpoint = "http://ip-api.com/json/"

// IPLocator resolves a client IP to a "City, Country" label.
type IPLocator struct {
	client   *http.Client
	endpoint string
}

func NewIPLocator() *IPLocator {
	return &IPLocator{
		client:   &http.Client{Timeout: 5 * time.Second},
		endpoint: defaultGeoEndpoint,
	}
}

// GetIPLocation never fails; lookups that go wrong come back as "Unknown".
func (l *IPLocator) GetIPLocation(ctx context.Context, ipAddress string) string {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return "Unknown"
	}
	if ip.IsLoopback() || ip.IsPrivate() {
		return "Local"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint+ip.String(), nil)
	if err != nil {
		return "Unknown"
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "Unknown"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "Unknown"
	}

	var result struct {
		Country string `json:"country"`
		City    string `json:"city"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "Unknown"
	}

	if result.City != "" && result.Country != "" {
		return fmt.Sprintf("%s, %s", result.City, result.Country)
	}
	if result.Country != "" {
		return strings.TrimSpace(result.Country)
	}

	return "Unknown"
}

// StaticLocator answers every lookup with the same label.
type StaticLocator string

func (s StaticLocator) GetIPLocation(ctx context.Context, ipAddress string) string {
	return string(s)
}
