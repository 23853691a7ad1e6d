package utils

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
)

var tunDevicePattern = regexp.MustCompile(`TUN/TAP device (\S+) opened`)

// ParseTunnelDevice scans tunnel subprocess log output for the line announcing
// the opened TUN device and returns its interface name. The last match wins,
// since the log accumulates across reconnects.
func ParseTunnelDevice(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	device := ""
	for scanner.Scan() {
		if m := tunDevicePattern.FindStringSubmatch(scanner.Text()); m != nil {
			device = m[1]
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error reading tunnel log: %w", err)
	}
	if device == "" {
		return "", fmt.Errorf("no TUN device found in tunnel log")
	}
	return device, nil
}
