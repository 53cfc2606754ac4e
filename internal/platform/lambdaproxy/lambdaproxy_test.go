package lambdaproxy

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Path", r.URL.Path)
		w.Header().Set("X-Query", r.URL.RawQuery)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Request-Id", r.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	})
}

func TestHandle_RoundTrip(t *testing.T) {
	a := New(echoHandler(t))

	evt := events.APIGatewayV2HTTPRequest{
		RawPath:        "/ai-clinic",
		RawQueryString: "trace=1",
		Headers:        map[string]string{"content-type": "application/json"},
		Body:           `{"action":"risk-flag"}`,
	}
	evt.RequestContext.HTTP.Method = "post"
	evt.RequestContext.RequestID = "apigw-123"

	resp, err := a.Handle(context.Background(), evt)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"action":"risk-flag"}`, resp.Body)
	assert.False(t, resp.IsBase64Encoded)
	assert.Equal(t, "application/json", resp.Headers["content-type"])
	assert.Equal(t, "/ai-clinic", resp.Headers["x-path"])
	assert.Equal(t, "trace=1", resp.Headers["x-query"])
	assert.Equal(t, "POST", resp.Headers["x-method"])
	assert.Equal(t, "apigw-123", resp.Headers["x-request-id"])
}

func TestHandle_Base64Body(t *testing.T) {
	a := New(echoHandler(t))

	evt := events.APIGatewayV2HTTPRequest{
		RawPath:         "/ai-clinic",
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"action":"symptom-check"}`)),
		IsBase64Encoded: true,
	}
	evt.RequestContext.HTTP.Method = http.MethodPost

	resp, err := a.Handle(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, `{"action":"symptom-check"}`, resp.Body)
}

func TestHandle_BadBase64(t *testing.T) {
	a := New(echoHandler(t))

	resp, err := a.Handle(context.Background(), events.APIGatewayV2HTTPRequest{
		RawPath:         "/ai-clinic",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, resp.Body)
}

func TestHandle_BinaryResponseIsEncoded(t *testing.T) {
	a := New(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte{0xff, 0xfe})
	}))

	resp, err := a.Handle(context.Background(), events.APIGatewayV2HTTPRequest{RawPath: "/"})
	require.NoError(t, err)
	assert.True(t, resp.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe}), resp.Body)
}
