// Package payload defines the wire types shared between the proxy lambda and
// the runtime emulator. They travel as the JSON body of SQS messages on the
// request queue.
package payload

import "encoding/json"

// EnvConfig mirrors the passthrough env_config block in the Lambda context.
// The emulator never interprets these fields; they are kept for parity with
// what a real lambda_runtime Context carries.
type EnvConfig struct {
	FunctionName string `json:"function_name"`
	Memory       int32  `json:"memory"`
	Version      string `json:"version"`
	LogStream    string `json:"log_stream"`
	LogGroup     string `json:"log_group"`
}

// InvocationContext is a local stand-in for the Lambda runtime's Context
// struct. Its zero value is usable on its own (TraceID falls back to the
// placeholder).
type InvocationContext struct {
	RequestID          string          `json:"request_id"`
	Deadline           int64           `json:"deadline"`
	InvokedFunctionArn string          `json:"invoked_function_arn"`
	XRayTraceID        string          `json:"xray_trace_id,omitempty"`
	ClientContext      json.RawMessage `json:"client_context,omitempty"`
	Identity           json.RawMessage `json:"identity,omitempty"`
	EnvConfig          *EnvConfig      `json:"env_config,omitempty"`
}

// PlaceholderTraceID is returned in lieu of a real X-Ray trace header when
// none was supplied, so downstream tooling always sees a well-formed value.
const PlaceholderTraceID = "Root=0-00000000-000000000000000000000000;Parent=0000000000000000;Sampled=0;Lineage=00000000:0"

// TraceID returns the context's X-Ray trace id, falling back to the
// well-known all-zero placeholder when it is absent.
func (c InvocationContext) TraceID() string {
	if c.XRayTraceID == "" {
		return PlaceholderTraceID
	}
	return c.XRayTraceID
}

// RequestPayload is the body the proxy lambda enqueues on the request queue:
// the opaque event plus the context needed to reconstruct runtime headers.
type RequestPayload struct {
	Event json.RawMessage   `json:"event"`
	Ctx   InvocationContext `json:"ctx"`
}
