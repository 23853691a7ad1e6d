package directory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"tunneld/internal/cache"
	"tunneld/internal/config"
	"tunneld/internal/domain"
)

// Client fetches the logical-server directory and keeps a disk cache of it so
// repeated CLI invocations do not hit the API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cachePath  string
	maxAge     time.Duration
	logger     *zap.Logger
}

func NewClient(cfg *config.Config, dir cache.Dir, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.APIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cachePath:  dir.ServerDirectory(),
		maxAge:     time.Duration(cfg.MaxCacheAgeDays) * 24 * time.Hour,
		logger:     logger,
	}
}

type serverResponse struct {
	Code           int                    `json:"Code"`
	LogicalServers []domain.LogicalServer `json:"LogicalServers"`
}

// Logicals returns the server directory, preferring a fresh disk cache over
// the network.
func (c *Client) Logicals() (Directory, error) {
	if servers, ok := c.readCache(); ok {
		return servers, nil
	}

	url := fmt.Sprintf("%s/api/vpn/logicals", c.baseURL)
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error fetching server directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server directory request returned status %d", resp.StatusCode)
	}

	var payload serverResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("error parsing server directory: %w", err)
	}

	c.writeCache(payload.LogicalServers)
	return payload.LogicalServers, nil
}

func (c *Client) readCache() (Directory, bool) {
	info, err := os.Stat(c.cachePath)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.maxAge {
		return nil, false
	}

	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return nil, false
	}

	var servers Directory
	if err := json.Unmarshal(data, &servers); err != nil {
		c.logger.Warn("discarding unreadable server directory cache",
			zap.String("path", c.cachePath), zap.Error(err))
		return nil, false
	}
	return servers, true
}

func (c *Client) writeCache(servers []domain.LogicalServer) {
	data, err := json.Marshal(servers)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.cachePath, data, 0o644); err != nil {
		c.logger.Warn("failed to write server directory cache",
			zap.String("path", c.cachePath), zap.Error(err))
	}
}
