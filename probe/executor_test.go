package probe

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/southcitycomputer/scc-perf/testutils"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		name          string
		response      []byte
		expectedStage Stage
	}{
		{
			name:     "HTTP/1.1 200",
			response: testutils.OKResponse("hello"),
		},
		{
			name:     "HTTP/1.0 200",
			response: []byte("HTTP/1.0 200 OK\r\n\r\nhello"),
		},
		{
			name:          "201 is a failure",
			response:      testutils.StatusResponse("HTTP/1.1 201 Created"),
			expectedStage: StageStatus,
		},
		{
			name:          "404 is a failure",
			response:      testutils.StatusResponse("HTTP/1.1 404 Not Found"),
			expectedStage: StageStatus,
		},
		{
			name:          "HTTP/2 status line is a failure",
			response:      testutils.StatusResponse("HTTP/2 200"),
			expectedStage: StageStatus,
		},
		{
			name:          "empty response",
			response:      []byte{},
			expectedStage: StageStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutils.NewRawServer(t, func(string) []byte { return tt.response })

			resp, err := NewExecutor().Execute(context.Background(), srv.Addr(), "/health")
			if tt.expectedStage != "" {
				var reqErr *RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Equal(t, tt.expectedStage, reqErr.Stage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.response), resp.Bytes)
			assert.Positive(t, resp.Latency)
		})
	}
}

func TestExecute_RequestFraming(t *testing.T) {
	srv := testutils.NewRawServer(t, func(string) []byte { return testutils.OKResponse("") })

	_, err := NewExecutor().Execute(context.Background(), srv.Addr(), "/css/main.min.css")
	require.NoError(t, err)

	expected := "GET /css/main.min.css HTTP/1.1\r\nHost: " + srv.Addr() + "\r\nConnection: close\r\n\r\n"
	assert.Equal(t, expected, srv.LastRequest())
}

func TestExecute_ConnectFailure(t *testing.T) {
	exec := NewExecutor()
	exec.Dial = func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}

	_, err := exec.Execute(context.Background(), "127.0.0.1:1", "/")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, StageConnect, reqErr.Stage)
}

func TestParseStatusCode(t *testing.T) {
	assert.Equal(t, 200, parseStatusCode("HTTP/1.1 200 OK"))
	assert.Equal(t, 404, parseStatusCode("HTTP/1.0 404"))
	assert.Equal(t, 0, parseStatusCode("garbage"))
	assert.Equal(t, 0, parseStatusCode("HTTP/1.1 abc"))
	assert.Equal(t, 0, parseStatusCode(""))
}
