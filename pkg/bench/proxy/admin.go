package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/proxystack/wasmbench/pkg/bench/errors"
)

// MemoryStats is the proxy admin /memory snapshot. All values are bytes.
type MemoryStats struct {
	Allocated        uint64 `json:"allocated"`
	HeapSize         uint64 `json:"heap_size"`
	PageheapUnmapped uint64 `json:"pageheap_unmapped"`
	PageheapFree     uint64 `json:"pageheap_free"`
	TotalThreadCache uint64 `json:"total_thread_cache"`
	TotalPhysical    uint64 `json:"total_physical_bytes"`
}

// Fields returns the snapshot as a flat map for report metadata.
func (m MemoryStats) Fields() map[string]uint64 {
	return map[string]uint64{
		"allocated":            m.Allocated,
		"heap_size":            m.HeapSize,
		"pageheap_unmapped":    m.PageheapUnmapped,
		"pageheap_free":        m.PageheapFree,
		"total_thread_cache":   m.TotalThreadCache,
		"total_physical_bytes": m.TotalPhysical,
	}
}

// UnmarshalJSON accepts both quoted and bare numbers; the proxy admin
// endpoint serializes its counters as strings.
func (m *MemoryStats) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := map[string]*uint64{
		"allocated":            &m.Allocated,
		"heap_size":            &m.HeapSize,
		"pageheap_unmapped":    &m.PageheapUnmapped,
		"pageheap_free":        &m.PageheapFree,
		"total_thread_cache":   &m.TotalThreadCache,
		"total_physical_bytes": &m.TotalPhysical,
	}

	for key, dst := range fields {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		value, err := parseAdminNumber(msg)
		if err != nil {
			return fmt.Errorf("bad %s value: %w", key, err)
		}
		*dst = value
	}
	return nil
}

func parseAdminNumber(msg json.RawMessage) (uint64, error) {
	s := strings.Trim(strings.TrimSpace(string(msg)), `"`)
	if s == "" || s == "null" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// AdminClient queries a proxy admin interface.
type AdminClient struct {
	client  *http.Client
	baseURL string
}

// NewAdminClient builds a client for an admin address, either "host:port"
// or "unix:/path/to/admin.sock".
func NewAdminClient(address string) *AdminClient {
	if path, ok := strings.CutPrefix(address, "unix:"); ok {
		return &AdminClient{
			baseURL: "http://unix",
			client: &http.Client{
				Timeout: 5 * time.Second,
				Transport: &http.Transport{
					DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
						var d net.Dialer
						return d.DialContext(ctx, "unix", path)
					},
				},
			},
		}
	}

	return &AdminClient{
		baseURL: "http://" + address,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Memory fetches the /memory snapshot.
func (c *AdminClient) Memory(ctx context.Context) (*MemoryStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/memory", nil)
	if err != nil {
		return nil, errors.Wrap(errors.DomainProxy, errors.CodeAdminFailed,
			"failed to build admin request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.DomainProxy, errors.CodeAdminFailed,
			"admin /memory request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.DomainProxy, errors.CodeAdminFailed,
			fmt.Sprintf("admin /memory returned status %d", resp.StatusCode))
	}

	var stats MemoryStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, errors.Wrap(errors.DomainProxy, errors.CodeAdminFailed,
			"failed to decode admin /memory response", err)
	}
	return &stats, nil
}
