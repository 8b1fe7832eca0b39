package runtimeapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathspace/lambda-debugger/internal/emulatorconfig"
	"github.com/mathspace/lambda-debugger/internal/rerunguard"
)

func newLocalServer(payload string) *Server {
	return &Server{
		Config: emulatorconfig.Config{
			ListenAddr: emulatorconfig.DefaultListenAddr,
			Local:      &emulatorconfig.LocalSource{Payload: payload, FileName: "payload.json"},
		},
		Guard: &rerunguard.Guard{},
	}
}

func TestNextInvocationServesLocalPayload(t *testing.T) {
	s := newLocalServer(`{"hello":"world"}`)
	req := httptest.NewRequest(http.MethodGet, "/2018-06-01/runtime/invocation/next", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, LocalRequestID, rec.Header().Get("lambda-runtime-aws-request-id"))
	assert.Equal(t, localDeadlineMs, rec.Header().Get("lambda-runtime-deadline-ms"))
	assert.Equal(t, localInvokedFunctionArn, rec.Header().Get("lambda-runtime-invoked-function-arn"))
	assert.NotEmpty(t, rec.Header().Get("lambda-runtime-trace-id"))
	assert.Equal(t, `{"hello":"world"}`, rec.Body.String())
}

func TestNextInvocationParksWhenGuardSet(t *testing.T) {
	parked := false
	orig := rerunPark
	rerunPark = func() { parked = true }
	defer func() { rerunPark = orig }()

	s := newLocalServer(`{}`)
	s.Guard.Set()

	req := httptest.NewRequest(http.MethodGet, "/2018-06-01/runtime/invocation/next", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.True(t, parked)
}

func TestResponseSetsGuardInLocalMode(t *testing.T) {
	s := newLocalServer(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/2018-06-01/runtime/invocation/local-request-id/response", strings.NewReader(`{"ok":true}`))
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.Guard.CheckAndClear())
}

func TestLambdaErrorSetsGuardAndReturns500(t *testing.T) {
	s := newLocalServer(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/2018-06-01/runtime/invocation/local-request-id/error", strings.NewReader(`{"errorMessage":"boom"}`))
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, s.Guard.CheckAndClear())
}

func TestLambdaErrorHandlesNonUTF8Body(t *testing.T) {
	s := newLocalServer(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/2018-06-01/runtime/invocation/local-request-id/error", bytes.NewReader([]byte{0xff, 0xfe, 0xfd}))
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, s.Guard.CheckAndClear())
}

func TestInitErrorRoutesToErrorHandler(t *testing.T) {
	s := newLocalServer(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/2018-06-01/runtime/init/error", strings.NewReader(`{"errorMessage":"boom"}`))
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReceiptHandleFromPathExtractsID(t *testing.T) {
	id, err := receiptHandleFromPath("/2018-06-01/runtime/invocation/abc-123-handle/response")
	require.NoError(t, err)
	assert.Equal(t, "abc-123-handle", id)
}

func TestReceiptHandleFromPathRejectsMalformedPath(t *testing.T) {
	_, err := receiptHandleFromPath("/runtime/invocation/response")
	assert.Error(t, err)
}
