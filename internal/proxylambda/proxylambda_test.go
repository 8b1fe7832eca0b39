package proxylambda

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	sentBodies    []string
	sentQueueURLs []string
	receiveBatch  [][]sqstypes.Message
	receiveCalls  int
	deleted       []string
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sentBodies = append(f.sentBodies, aws.ToString(in.MessageBody))
	f.sentQueueURLs = append(f.sentQueueURLs, aws.ToString(in.QueueUrl))
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	idx := f.receiveCalls
	f.receiveCalls++
	if idx >= len(f.receiveBatch) {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	return &sqs.ReceiveMessageOutput{Messages: f.receiveBatch[idx]}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) ListQueues(_ context.Context, _ *sqs.ListQueuesInput, _ ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error) {
	return &sqs.ListQueuesOutput{}, nil
}

func withLambdaContext(arn string) context.Context {
	return lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{
		AwsRequestID:       "req-1",
		InvokedFunctionArn: arn,
	})
}

func TestInvokeSendsRequestAndWaitsForResponse(t *testing.T) {
	f := &fakeSQS{
		// First ReceiveMessage call is the response-queue purge (empty = nothing stale).
		receiveBatch: [][]sqstypes.Message{
			{},
			{{Body: aws.String(`{"result":"ok"}`), ReceiptHandle: aws.String("rh-1")}},
		},
	}
	h := &Handler{SQSClient: f}

	ctx := withLambdaContext("arn:aws:lambda:us-east-1:512295225992:function:my-lambda")
	resp, err := h.Invoke(ctx, json.RawMessage(`{"command":"ping"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"ok"}`, string(resp))

	require.Len(t, f.sentBodies, 1)
	assert.Contains(t, f.sentBodies[0], `"command":"ping"`)
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/512295225992/proxy_lambda_req", f.sentQueueURLs[0])
	assert.Contains(t, f.deleted, "rh-1")
}

func TestInvokeRejectsMalformedARN(t *testing.T) {
	f := &fakeSQS{}
	h := &Handler{SQSClient: f}
	ctx := withLambdaContext("not-an-arn")
	_, err := h.Invoke(ctx, json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestInvokeReturnsNullWhenNoDefaultResponseQueue(t *testing.T) {
	f := &fakeSQS{}
	h := &Handler{SQSClient: purgeFailingSQS{fakeSQS: f}}
	ctx := withLambdaContext("arn:aws:lambda:us-east-1:512295225992:function:my-lambda")
	resp, err := h.Invoke(ctx, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "null", string(resp))
}

// purgeFailingSQS simulates a missing/misconfigured default response queue:
// ReceiveMessage during the purge step always errors.
type purgeFailingSQS struct {
	*fakeSQS
}

func (p purgeFailingSQS) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return nil, assertErr{}
}

type assertErr struct{}

func (assertErr) Error() string { return "queue does not exist" }

func TestPrintEnvExcludesCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "shh")
	t.Setenv("SOME_OTHER_VAR", "visible")
	out := PrintEnv()
	assert.Contains(t, out, "SOME_OTHER_VAR=visible")
	assert.NotContains(t, out, "shh")
}
