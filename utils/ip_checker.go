package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const ipLookupURL = "https://api.seeip.org/jsonip"

// IPChecker resolves the host's current public address, used by the status
// display to show whether traffic leaves through the tunnel exit.
type IPChecker interface {
	PublicIP(client *http.Client) (string, error)
}

type DefaultIPChecker struct{}

func (DefaultIPChecker) PublicIP(client *http.Client) (string, error) {
	resp, err := client.Get(ipLookupURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip lookup returned status %d", resp.StatusCode)
	}

	var payload struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("error parsing ip lookup response: %w", err)
	}
	return payload.IP, nil
}
