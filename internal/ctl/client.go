// Package ctl is the client side of the control socket: one request per
// connection, written whole and half-closed, with the reply read to EOF.
package ctl

import (
	"fmt"
	"io"
	"net"
	"strings"

	"tunneld/internal/domain"
	"tunneld/internal/wire"
)

type Client struct {
	socketPath string
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

func (c *Client) roundTrip(req wire.Request) (string, error) {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return "", fmt.Errorf("cannot reach daemon at %s, is it running? %w", c.socketPath, err)
	}
	defer conn.Close()

	if _, err := conn.Write(wire.EncodeRequest(req)); err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if err := conn.(*net.UnixConn).CloseWrite(); err != nil {
		return "", err
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return strings.TrimSpace(string(reply)), nil
}

// Status asks the daemon for its connection state.
func (c *Client) Status() (wire.StatusResponse, error) {
	reply, err := c.roundTrip(wire.StatusRequest{})
	if err != nil {
		return wire.StatusResponse{}, err
	}

	res, err := wire.DecodeResponse(reply)
	if err != nil {
		return wire.StatusResponse{}, err
	}
	return res.(wire.StatusResponse), nil
}

func (c *Client) Connect(serverID string, proto domain.Protocol) error {
	_, err := c.roundTrip(wire.ConnectRequest{ServerID: serverID, Protocol: proto})
	return err
}

func (c *Client) Disconnect() error {
	_, err := c.roundTrip(wire.DisconnectRequest{})
	return err
}

func (c *Client) Killswitch(enable bool) error {
	_, err := c.roundTrip(wire.KillswitchRequest{Enable: enable})
	return err
}
