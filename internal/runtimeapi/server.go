// Package runtimeapi implements the HTTP surface of the AWS Lambda Runtime
// Interface: next_invocation, response and error, served to whatever local
// process is acting as the lambda runtime under test.
//
// Ported from original_source/lambda-debugger/src/main.rs and its
// handlers/{next_invocation,lambda_error}.rs, and
// runtime-emulator/src/handlers/lambda_response.rs for the success path.
package runtimeapi

import (
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/mathspace/lambda-debugger/internal/emulatorconfig"
	"github.com/mathspace/lambda-debugger/internal/payload"
	"github.com/mathspace/lambda-debugger/internal/queue"
	"github.com/mathspace/lambda-debugger/internal/rerunguard"
)

// LocalRequestID is returned in place of a receipt handle when replaying
// from a local payload file, since there is no SQS message to reply to.
const LocalRequestID = "local-request-id"

// localDeadlineMs and localInvokedFunctionArn stand in for the runtime
// context fields a real Lambda invocation would supply, since local replay
// has no SQS-sourced InvocationContext to draw them from.
const (
	localDeadlineMs         = "2035313041000" // year 2034
	localInvokedFunctionArn = "from-local-payload"
)

var responsePathPattern = regexp.MustCompile(`/invocation/(.+)/response`)

// Server serves the runtime API routes described in the AWS documentation
// at /2018-06-01/runtime/... (the exact path prefix is irrelevant; routing
// is done on path suffix, matching real Lambda runtime clients that vary
// their prefix by major version).
type Server struct {
	Config    emulatorconfig.Config
	SQSClient queue.API
	Guard     *rerunguard.Guard
}

// Handler returns the root http.Handler for the runtime API. Routing
// mirrors the original dispatcher: GET .../invocation/next goes to
// next_invocation; anything that isn't POST after that is a protocol
// violation and is fatal; POST .../response goes to the success handler;
// everything else (.../error, .../init/error, or genuinely unrecognized
// POSTs) goes to the error handler, with a warning logged for the
// unrecognized case.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.route)
	return mux
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if r.Method == http.MethodGet && hasSuffix(path, "/invocation/next") {
		s.nextInvocation(w, r)
		return
	}

	if r.Method != http.MethodPost {
		log.Fatalf("runtimeapi: invalid request: %s %s", r.Method, path)
	}

	if responsePathPattern.MatchString(path) {
		s.response(w, r)
		return
	}

	if hasSuffix(path, "/error") || hasSuffix(path, "/init/error") {
		s.lambdaError(w, r)
		return
	}

	log.Printf("runtimeapi: unknown request type: %s %s", r.Method, path)
	s.lambdaError(w, r)
}

// nextInvocation serves the next pending invocation, blocking on SQS when
// in remote mode. It parks instead of responding when the rerun guard is
// set, per the "failing loud once, then stall" policy: a crashing or
// endlessly-erroring local handler must not be handed the same event again
// without the developer explicitly restarting the emulator.
func (s *Server) nextInvocation(w http.ResponseWriter, r *http.Request) {
	if s.Guard.CheckAndClear() {
		log.Printf("runtimeapi: rerun blocked, restart the emulator to try again")
		rerunPark()
		return
	}

	if s.Config.Local != nil {
		log.Printf("runtimeapi: sending payload from file")
		writeInvocation(w, LocalRequestID, localDeadlineMs, localInvokedFunctionArn, payload.PlaceholderTraceID, s.Config.Local.Payload)
		return
	}

	msg, err := queue.GetInput(r.Context(), s.SQSClient, s.Config.Remote.RequestQueueURL)
	if err != nil {
		log.Fatalf("runtimeapi: failed to get next invocation: %v", err)
	}

	log.Printf("runtimeapi: lambda request:\n%s", msg.Event)
	writeInvocation(w, msg.ReceiptHandle, strconv.FormatInt(msg.Ctx.Deadline, 10), msg.Ctx.InvokedFunctionArn, msg.Ctx.TraceID(), string(msg.Event))
}

func writeInvocation(w http.ResponseWriter, requestID, deadlineMs, invokedFunctionArn, traceID, body string) {
	h := w.Header()
	h.Set("lambda-runtime-aws-request-id", requestID)
	h.Set("lambda-runtime-deadline-ms", deadlineMs)
	h.Set("lambda-runtime-invoked-function-arn", invokedFunctionArn)
	h.Set("lambda-runtime-trace-id", traceID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// response handles a successful invocation result, forwarding it to the
// response queue (if any is configured) and deleting the originating
// request message so it cannot be replayed.
func (s *Server) response(w http.ResponseWriter, r *http.Request) {
	receiptHandle, err := receiptHandleFromPath(r.URL.Path)
	if err != nil {
		log.Fatalf("runtimeapi: %v", err)
	}

	body, err := readUTF8Body(r)
	if err != nil {
		log.Fatalf("runtimeapi: %v", err)
	}

	log.Printf("runtimeapi: lambda response:\n%s", body)

	if s.Config.Local != nil {
		log.Printf("runtimeapi: local payload replay succeeded, blocking further reruns")
		s.Guard.Set()
	} else {
		if err := queue.SendOutput(r.Context(), s.SQSClient, s.Config.Remote.RequestQueueURL, s.Config.Remote.ResponseQueueURL, body, receiptHandle); err != nil {
			log.Fatalf("runtimeapi: failed to send response: %v", err)
		}
	}

	w.WriteHeader(http.StatusOK)
}

// lambdaError handles both invocation errors and init errors: AWS documents
// them as separate endpoints, but neither this emulator nor the original it
// was ported from distinguishes their handling, since there is no upstream
// caller to report the nuance to. Unlike the success path, a non-UTF-8 error
// body is not fatal: it is hex-dumped and logged, and the handler still sets
// the rerun guard and returns 500.
func (s *Server) lambdaError(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		log.Fatalf("runtimeapi: failed to read lambda error: %v", err)
	}

	if utf8.Valid(b) {
		log.Printf("runtimeapi: lambda error: %s", b)
	} else {
		log.Printf("runtimeapi: non-UTF-8 error response from lambda: %s", hex.EncodeToString(b))
	}

	s.Guard.Set()

	w.WriteHeader(http.StatusInternalServerError)
}

func receiptHandleFromPath(path string) (string, error) {
	m := responsePathPattern.FindStringSubmatch(path)
	if m == nil {
		return "", fmt.Errorf("request URL does not conform to .../invocation/{id}/response: %s", path)
	}
	return m[1], nil
}

func readUTF8Body(r *http.Request) (string, error) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read lambda response: %w", err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("non-UTF-8 response from lambda: %s", hex.EncodeToString(b))
	}
	return string(b), nil
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

// rerunPark is a var so tests can shorten it instead of blocking for real.
var rerunPark = func() {
	time.Sleep(rerunguard.ParkDuration)
}
