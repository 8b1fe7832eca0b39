// Package queue wraps the SQS operations the emulator, the proxy lambda, and
// the admin CLI all need: pulling a request off the request queue, pushing a
// response back, discovering the default queue pair by name, and draining a
// queue of stale messages.
//
// Ported from the original's runtime-emulator/src/sqs.rs (get_input,
// send_output) and proxy-lambda/src/main.rs (purge_response_queue), with the
// SDK client itself following the teacher's own aws-sdk-go-v2 usage in
// proxy/sqs.go.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/mathspace/lambda-debugger/internal/codec"
	"github.com/mathspace/lambda-debugger/internal/payload"
)

// maxReceiveBatch is the largest batch SQS allows per ReceiveMessage call.
const maxReceiveBatch = 10

// API is the subset of the SQS client this package depends on, so callers
// can substitute a fake in tests without dragging in network calls.
type API interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ListQueues(ctx context.Context, params *sqs.ListQueuesInput, optFns ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error)
}

// Message is an inbound request pulled off the request queue, already
// decoded into the emulator's own payload shape.
type Message struct {
	Event         json.RawMessage
	Ctx           payload.InvocationContext
	ReceiptHandle string
}

// GetInput long-polls the request queue until a message arrives, retrying
// transient receive errors rather than giving up. It blocks the calling
// goroutine, matching the original's own infinite retry loop in get_input.
func GetInput(ctx context.Context, client API, queueURL string) (Message, error) {
	for {
		out, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			log.Printf("queue: failed to receive message, retrying in 5s: %v", err)
			if !sleepOrDone(ctx, 5*time.Second) {
				return Message{}, ctx.Err()
			}
			continue
		}

		if len(out.Messages) == 0 {
			continue
		}
		m := out.Messages[0]
		if m.Body == nil || m.ReceiptHandle == nil {
			return Message{}, fmt.Errorf("queue: message missing body or receipt handle: %+v", m)
		}

		var req payload.RequestPayload
		if err := json.Unmarshal([]byte(*m.Body), &req); err != nil {
			return Message{}, fmt.Errorf("queue: failed to decode request payload: %w", err)
		}

		return Message{Event: req.Event, Ctx: req.Ctx, ReceiptHandle: *m.ReceiptHandle}, nil
	}
}

// SendOutput pushes a response onto the response queue (applying the
// oversize-payload codec first) and deletes the originating request message
// so it cannot be replayed. A response too large even after compression is
// dropped with a logged warning rather than sent truncated.
func SendOutput(ctx context.Context, client API, requestQueueURL, responseQueueURL, body, receiptHandle string) error {
	encoded, err := codec.Encode(body)
	if err != nil {
		return fmt.Errorf("queue: failed to encode response: %w", err)
	}

	if len(encoded) >= codec.MaxSQSMessageBytes {
		log.Printf("queue: response is %d bytes even after compression, exceeds the %d byte SQS limit, dropping", len(encoded), codec.MaxSQSMessageBytes)
	} else if responseQueueURL != "" {
		if _, err := client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(responseQueueURL),
			MessageBody: aws.String(encoded),
		}); err != nil {
			return fmt.Errorf("queue: failed to send response: %w", err)
		}
	} else {
		log.Printf("queue: no response queue configured, not sending response")
	}

	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(requestQueueURL),
		ReceiptHandle: aws.String(receiptHandle),
	}); err != nil {
		return fmt.Errorf("queue: failed to delete request message: %w", err)
	}
	return nil
}

// DefaultQueues is the request/response queue URL pair discovered by name
// when no explicit queue URL env var is set.
type DefaultQueues struct {
	RequestURL  string
	ResponseURL string
}

// queueNamePrefix is the common prefix shared by both default queue names;
// ListQueues is filtered server-side to this prefix to avoid paging through
// every queue in the account.
const queueNamePrefix = "proxy_lambda_re"

// GetDefaultQueues lists queues by the shared "proxy_lambda_re" prefix and
// picks out the request/response queues by their exact name suffix. Either
// field may come back empty if the corresponding queue doesn't exist.
func GetDefaultQueues(ctx context.Context, client API) (DefaultQueues, error) {
	out, err := client.ListQueues(ctx, &sqs.ListQueuesInput{
		QueueNamePrefix: aws.String(queueNamePrefix),
	})
	if err != nil {
		return DefaultQueues{}, fmt.Errorf("queue: failed to list queues: %w", err)
	}

	var q DefaultQueues
	for _, url := range out.QueueUrls {
		switch {
		case hasSuffix(url, "/proxy_lambda_req"):
			q.RequestURL = url
		case hasSuffix(url, "/proxy_lambda_resp"):
			q.ResponseURL = url
		}
	}
	return q, nil
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

// ListQueues returns every queue URL matching prefix, for the admin CLI.
func ListQueues(ctx context.Context, client API, prefix string) ([]string, error) {
	out, err := client.ListQueues(ctx, &sqs.ListQueuesInput{QueueNamePrefix: aws.String(prefix)})
	if err != nil {
		return nil, fmt.Errorf("queue: failed to list queues: %w", err)
	}
	return out.QueueUrls, nil
}

// PurgeQueue drains a queue one batch at a time using ReceiveMessage with no
// wait time followed by DeleteMessage, the same approach the proxy lambda
// uses to clear stale responses before waiting on a fresh one. This is
// distinct from SQS's own PurgeQueue API, which is rate limited to once per
// 60 seconds per queue and unsuitable for use right before a blocking
// receive.
func PurgeQueue(ctx context.Context, client API, queueURL string) (int, error) {
	deleted := 0
	for {
		out, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: maxReceiveBatch,
			WaitTimeSeconds:     0,
		})
		if err != nil {
			return deleted, fmt.Errorf("queue: failed to receive messages while purging: %w", err)
		}
		if len(out.Messages) == 0 {
			return deleted, nil
		}
		for _, m := range out.Messages {
			if m.ReceiptHandle == nil {
				continue
			}
			if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(queueURL),
				ReceiptHandle: m.ReceiptHandle,
			}); err != nil {
				return deleted, fmt.Errorf("queue: failed to delete message while purging: %w", err)
			}
			deleted++
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
