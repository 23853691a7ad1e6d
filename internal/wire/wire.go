// Package wire implements the control socket message format: a flat ASCII
// string of colon-separated fields where field 0 is the command keyword and
// the remaining fields are positional arguments. The delimiter is never
// escaped, so argument values (server ids, names) must not contain ':'.
package wire

import (
	"fmt"
	"strconv"
	"strings"

	"tunneld/internal/domain"
)

// Request is one of StatusRequest, DisconnectRequest, ConnectRequest or
// KillswitchRequest.
type Request interface {
	isRequest()
}

type StatusRequest struct{}

type DisconnectRequest struct{}

type ConnectRequest struct {
	ServerID string
	Protocol domain.Protocol
}

type KillswitchRequest struct {
	Enable bool
}

func (StatusRequest) isRequest()     {}
func (DisconnectRequest) isRequest() {}
func (ConnectRequest) isRequest()    {}
func (KillswitchRequest) isRequest() {}

// Response is currently only ever a StatusResponse; other request kinds are
// fire-and-forget from the client's perspective.
type Response interface {
	isResponse()
}

// StatusResponse reports the daemon's connection state. A nil Connected field
// means disconnected.
type StatusResponse struct {
	Connected *ConnectedStatus
}

type ConnectedStatus struct {
	PID      int
	Name     string
	Protocol domain.Protocol
}

func (StatusResponse) isResponse() {}

// DecodeError reports a malformed or unrecognized wire message. It carries
// the offending message for diagnostics.
type DecodeError struct {
	Message string
	Reason  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode message %q: %s", e.Message, e.Reason)
}

func decodeErr(msg, reason string) error {
	return &DecodeError{Message: msg, Reason: reason}
}

func split(msg string) (string, []string) {
	parts := strings.Split(msg, ":")
	return parts[0], parts[1:]
}

// DecodeRequest parses a client message into a Request.
func DecodeRequest(msg string) (Request, error) {
	command, args := split(msg)

	switch command {
	case "status":
		if len(args) != 0 {
			return nil, decodeErr(msg, "status takes no arguments")
		}
		return StatusRequest{}, nil
	case "disconnect":
		if len(args) != 0 {
			return nil, decodeErr(msg, "disconnect takes no arguments")
		}
		return DisconnectRequest{}, nil
	case "connect":
		if len(args) != 2 {
			return nil, decodeErr(msg, "connect takes exactly two arguments")
		}
		proto, err := domain.ParseProtocol(args[1])
		if err != nil {
			return nil, decodeErr(msg, err.Error())
		}
		return ConnectRequest{ServerID: args[0], Protocol: proto}, nil
	case "killswitch":
		if len(args) != 1 || (args[0] != "true" && args[0] != "false") {
			return nil, decodeErr(msg, `killswitch takes a single "true" or "false" argument`)
		}
		return KillswitchRequest{Enable: args[0] == "true"}, nil
	default:
		return nil, decodeErr(msg, "no such command")
	}
}

// EncodeRequest renders a Request back into its wire form. Exact inverse of
// DecodeRequest.
func EncodeRequest(req Request) []byte {
	var msg string
	switch r := req.(type) {
	case StatusRequest:
		msg = "status"
	case DisconnectRequest:
		msg = "disconnect"
	case ConnectRequest:
		msg = fmt.Sprintf("connect:%s:%s", r.ServerID, r.Protocol)
	case KillswitchRequest:
		msg = fmt.Sprintf("killswitch:%t", r.Enable)
	}
	return []byte(msg)
}

// DecodeResponse parses a daemon reply into a Response.
func DecodeResponse(msg string) (Response, error) {
	command, args := split(msg)
	if command != "status" {
		return nil, decodeErr(msg, "no such command")
	}

	switch {
	case len(args) == 1 && args[0] == "disconnected":
		return StatusResponse{}, nil
	case len(args) == 4 && args[0] == "connected":
		pid, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, decodeErr(msg, "pid is not an integer")
		}
		proto, err := domain.ParseProtocol(args[3])
		if err != nil {
			return nil, decodeErr(msg, err.Error())
		}
		return StatusResponse{Connected: &ConnectedStatus{
			PID:      pid,
			Name:     args[2],
			Protocol: proto,
		}}, nil
	default:
		return nil, decodeErr(msg, "no such status or invalid arguments")
	}
}

// EncodeResponse renders a Response into its wire form.
func EncodeResponse(res Response) []byte {
	switch r := res.(type) {
	case StatusResponse:
		if r.Connected == nil {
			return []byte("status:disconnected")
		}
		c := r.Connected
		return []byte(fmt.Sprintf("status:connected:%d:%s:%s", c.PID, c.Name, c.Protocol))
	}
	return nil
}
