// Package proxylambda implements the cloud side of the bridge: an AWS
// Lambda handler that takes a real invocation, forwards it to the
// developer's local emulator over the request queue, and waits on the
// response queue for the result (or returns null immediately if no response
// queue URL is set and the default response queue cannot be purged).
//
// Ported from original_source/proxy-lambda/src/main.rs, with the queue
// plumbing delegated to internal/queue the way the teacher's own
// proxy/main.go delegates to its sqs package.
package proxylambda

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/mathspace/lambda-debugger/internal/awsarn"
	"github.com/mathspace/lambda-debugger/internal/codec"
	"github.com/mathspace/lambda-debugger/internal/payload"
	"github.com/mathspace/lambda-debugger/internal/queue"
)

// pollInterval is how long each ReceiveMessage long-poll waits for a
// response before looping again, matching the original's 20s wait time.
const pollInterval = 20 * time.Second

// sensitiveEnvVars are never included in PrintEnv's output.
var sensitiveEnvVars = map[string]bool{
	"AWS_ACCESS_KEY_ID":     true,
	"AWS_SECRET_ACCESS_KEY": true,
	"AWS_SESSION_TOKEN":     true,
}

// Handler bridges one Lambda invocation to the local emulator.
type Handler struct {
	SQSClient queue.API
}

// Invoke is the aws-lambda-go handler function. event is passed through
// opaquely; ctx carries the invoked-function ARN and request ID the
// emulator needs to reconstruct runtime headers.
func (h *Handler) Invoke(ctx context.Context, event json.RawMessage) (json.RawMessage, error) {
	lc, ok := lambdacontext.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("proxylambda: no lambda context on request")
	}

	invocationCtx := buildInvocationContext(lc, ctx)

	log.Printf("proxylambda: event: %s", event)
	log.Printf("proxylambda: context: %+v", invocationCtx)

	arn, err := awsarn.ParseFunctionARN(invocationCtx.InvokedFunctionArn)
	if err != nil {
		return nil, fmt.Errorf("proxylambda: %w", err)
	}

	requestQueueURL := os.Getenv("PROXY_LAMBDA_REQ_QUEUE_URL")
	if requestQueueURL == "" {
		log.Printf("proxylambda: sending to default %s queue name, set PROXY_LAMBDA_REQ_QUEUE_URL to override", awsarn.DefaultRequestQueueName)
		requestQueueURL = arn.DefaultRequestQueueURL()
	}
	log.Printf("proxylambda: request queue: %s", requestQueueURL)

	body, err := json.Marshal(payload.RequestPayload{Event: event, Ctx: invocationCtx})
	if err != nil {
		return nil, fmt.Errorf("proxylambda: failed to serialize event and context: %w", err)
	}

	if _, err := h.SQSClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(requestQueueURL),
		MessageBody: aws.String(string(body)),
	}); err != nil {
		return nil, fmt.Errorf("proxylambda: failed to send request message: %w", err)
	}

	responseQueueURL, explicit := os.LookupEnv("PROXY_LAMBDA_RESP_QUEUE_URL")
	if !explicit {
		log.Printf("proxylambda: response queue from default %s queue name, set PROXY_LAMBDA_RESP_QUEUE_URL to override", awsarn.DefaultResponseQueueName)
		responseQueueURL = arn.DefaultResponseQueueURL()
	} else {
		log.Printf("proxylambda: response queue from env var: %s", responseQueueURL)
	}

	if _, err := queue.PurgeQueue(ctx, h.SQSClient, responseQueueURL); err != nil {
		if explicit {
			return nil, fmt.Errorf("proxylambda: failed to purge response queue: %w", err)
		}
		// No explicit queue configured and the default doesn't exist or isn't
		// accessible: treat this as "no one is waiting for a response".
		log.Printf("proxylambda: default response queue unavailable (%v), not waiting for a response", err)
		return json.RawMessage("null"), nil
	}

	return h.waitForResponse(ctx, responseQueueURL)
}

func (h *Handler) waitForResponse(ctx context.Context, responseQueueURL string) (json.RawMessage, error) {
	for {
		log.Printf("proxylambda: polling response queue")
		out, err := h.SQSClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(responseQueueURL),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     int32(pollInterval.Seconds()),
		})
		if err != nil {
			return nil, fmt.Errorf("proxylambda: failed to receive messages: %w", err)
		}
		if len(out.Messages) == 0 {
			continue
		}

		m := out.Messages[0]
		if m.Body == nil || m.ReceiptHandle == nil {
			return nil, fmt.Errorf("proxylambda: response message missing body or receipt handle")
		}

		decoded, err := codec.Decode(*m.Body)
		if err != nil {
			return nil, fmt.Errorf("proxylambda: failed to decode response: %w", err)
		}

		if _, err := h.SQSClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(responseQueueURL),
			ReceiptHandle: m.ReceiptHandle,
		}); err != nil {
			return nil, fmt.Errorf("proxylambda: failed to delete response message: %w", err)
		}

		return json.RawMessage(decoded), nil
	}
}

func buildInvocationContext(lc *lambdacontext.LambdaContext, ctx context.Context) payload.InvocationContext {
	deadline, _ := ctx.Deadline()

	ic := payload.InvocationContext{
		RequestID:          lc.AwsRequestID,
		InvokedFunctionArn: lc.InvokedFunctionArn,
		XRayTraceID:        os.Getenv("_X_AMZN_TRACE_ID"),
	}
	if !deadline.IsZero() {
		ic.Deadline = deadline.UnixMilli()
	}
	if cc, err := json.Marshal(lc.ClientContext); err == nil {
		ic.ClientContext = cc
	}
	if id, err := json.Marshal(lc.Identity); err == nil {
		ic.Identity = id
	}
	ic.EnvConfig = &payload.EnvConfig{
		FunctionName: lambdacontext.FunctionName,
		Memory:       int32(lambdacontext.MemoryLimitInMB),
		Version:      lambdacontext.FunctionVersion,
		LogStream:    lambdacontext.LogStreamName,
		LogGroup:     lambdacontext.LogGroupName,
	}
	return ic
}

// PrintEnv returns every environment variable except AWS credentials as a
// single sorted "export KEY=VALUE ..." line, so a developer can paste the
// proxy lambda's live environment straight into a local shell.
func PrintEnv() string {
	vars := make([]string, 0, 30)
	for _, e := range os.Environ() {
		key := strings.SplitN(e, "=", 2)[0]
		if sensitiveEnvVars[key] {
			continue
		}
		vars = append(vars, e)
	}
	sort.Strings(vars)
	return "export " + strings.Join(vars, " ")
}
