// Package awsarn derives the default request/response queue URLs from a
// Lambda-invoked-function ARN, mirroring the region/account extraction the
// original proxy did inline on every invocation.
package awsarn

import (
	"fmt"
	"strings"
)

// DefaultRequestQueueName and DefaultResponseQueueName are the well-known
// queue names the proxy and emulator fall back to when no queue URL is
// supplied via environment variable.
const (
	DefaultRequestQueueName  = "proxy_lambda_req"
	DefaultResponseQueueName = "proxy_lambda_resp"
)

// FunctionARN holds the parts of a Lambda-invoked-function ARN needed to
// derive default queue URLs, e.g.
// arn:aws:lambda:us-east-1:512295225992:function:my-lambda.
type FunctionARN struct {
	Region    string
	AccountID string
}

// ParseFunctionARN splits a Lambda function ARN into its region and account
// id. The ARN must split into exactly 7 colon-separated parts; anything else
// is treated as malformed, matching the original's hard failure on a
// mis-shaped ARN rather than guessing.
func ParseFunctionARN(arn string) (FunctionARN, error) {
	parts := strings.Split(arn, ":")
	if len(parts) != 7 {
		return FunctionARN{}, fmt.Errorf("awsarn: ARN should have 7 parts, but it has %d: %s", len(parts), arn)
	}
	return FunctionARN{Region: parts[3], AccountID: parts[4]}, nil
}

// QueueURL builds the standard SQS queue URL for the given queue name in
// this ARN's region and account.
func (a FunctionARN) QueueURL(queueName string) string {
	return fmt.Sprintf("https://sqs.%s.amazonaws.com/%s/%s", a.Region, a.AccountID, queueName)
}

// DefaultRequestQueueURL and DefaultResponseQueueURL are convenience
// wrappers around QueueURL for the two well-known queue names.
func (a FunctionARN) DefaultRequestQueueURL() string {
	return a.QueueURL(DefaultRequestQueueName)
}

func (a FunctionARN) DefaultResponseQueueURL() string {
	return a.QueueURL(DefaultResponseQueueName)
}
