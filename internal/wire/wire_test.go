package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunneld/internal/domain"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		expectError bool
		expected    Request
	}{
		{
			name:     "status",
			message:  "status",
			expected: StatusRequest{},
		},
		{
			name:     "disconnect",
			message:  "disconnect",
			expected: DisconnectRequest{},
		},
		{
			name:     "connect udp",
			message:  "connect:server1:udp",
			expected: ConnectRequest{ServerID: "server1", Protocol: domain.UDP},
		},
		{
			name:     "connect tcp",
			message:  "connect:server1:tcp",
			expected: ConnectRequest{ServerID: "server1", Protocol: domain.TCP},
		},
		{
			name:     "killswitch on",
			message:  "killswitch:true",
			expected: KillswitchRequest{Enable: true},
		},
		{
			name:     "killswitch off",
			message:  "killswitch:false",
			expected: KillswitchRequest{Enable: false},
		},
		{
			name:        "connect missing protocol",
			message:     "connect:server1",
			expectError: true,
		},
		{
			name:        "connect unknown protocol",
			message:     "connect:server1:sctp",
			expectError: true,
		},
		{
			name:        "unknown command",
			message:     "unknown:command",
			expectError: true,
		},
		{
			name:        "status with stray arguments",
			message:     "status:please",
			expectError: true,
		},
		{
			name:        "killswitch with non-boolean argument",
			message:     "killswitch:maybe",
			expectError: true,
		},
		{
			name:        "empty message",
			message:     "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeRequest(tt.message)
			if tt.expectError {
				var decodeErr *DecodeError
				require.ErrorAs(t, err, &decodeErr)
				assert.Equal(t, tt.message, decodeErr.Message)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, req)
		})
	}
}

func TestRequestRoundTrip(t *testing.T) {
	requests := []Request{
		StatusRequest{},
		DisconnectRequest{},
		ConnectRequest{ServerID: "server1", Protocol: domain.UDP},
		ConnectRequest{ServerID: "nl-42", Protocol: domain.TCP},
		KillswitchRequest{Enable: true},
		KillswitchRequest{Enable: false},
	}

	for _, req := range requests {
		encoded := EncodeRequest(req)
		decoded, err := DecodeRequest(string(encoded))
		require.NoError(t, err, "round trip of %q", encoded)
		assert.Equal(t, req, decoded)
	}
}

func TestEncodeRequest(t *testing.T) {
	assert.Equal(t, []byte("status"), EncodeRequest(StatusRequest{}))
	assert.Equal(t, []byte("disconnect"), EncodeRequest(DisconnectRequest{}))
	assert.Equal(t, []byte("connect:server1:udp"),
		EncodeRequest(ConnectRequest{ServerID: "server1", Protocol: domain.UDP}))
	assert.Equal(t, []byte("killswitch:true"), EncodeRequest(KillswitchRequest{Enable: true}))
}

func TestDecodeResponse(t *testing.T) {
	res, err := DecodeResponse("status:disconnected")
	require.NoError(t, err)
	assert.Equal(t, StatusResponse{}, res)

	res, err = DecodeResponse("status:connected:1234:server1:udp")
	require.NoError(t, err)
	status, ok := res.(StatusResponse)
	require.True(t, ok)
	require.NotNil(t, status.Connected)
	assert.Equal(t, 1234, status.Connected.PID)
	assert.Equal(t, "server1", status.Connected.Name)
	assert.Equal(t, domain.UDP, status.Connected.Protocol)

	_, err = DecodeResponse("status:invalid:command")
	assert.Error(t, err)

	_, err = DecodeResponse("status:connected:notapid:server1:udp")
	assert.Error(t, err)

	_, err = DecodeResponse("unknown:command")
	assert.Error(t, err)
}

func TestEncodeResponse(t *testing.T) {
	assert.Equal(t, []byte("status:disconnected"), EncodeResponse(StatusResponse{}))

	res := StatusResponse{Connected: &ConnectedStatus{
		PID:      1234,
		Name:     "server1",
		Protocol: domain.UDP,
	}}
	assert.Equal(t, []byte("status:connected:1234:server1:udp"), EncodeResponse(res))
}
