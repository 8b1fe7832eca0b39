// Package cwlogs tails the CloudWatch Logs of a deployed proxy lambda
// function, for the admin CLI's "logs" command.
//
// Adapted from the teacher's logs.go: the per-version log-stream-prefix
// hack (lambdafy stamps its own version number into the stream name) is
// dropped since this system's proxy lambda is a plain, unversioned
// function; the FilterLogEvents paging and afterToken-based tail loop are
// kept.
package cwlogs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

// API is the subset of the CloudWatch Logs client this package depends on.
type API interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// Batch is one page of log retrieval results.
type Batch struct {
	// AfterToken identifies the last event seen, so the next Fetch call can
	// skip events already returned.
	AfterToken string
	// Lines are new log lines in chronological order.
	Lines []string
}

// LogGroupName returns the conventional CloudWatch Logs group name for a
// Lambda function.
func LogGroupName(functionName string) string {
	return fmt.Sprintf("/aws/lambda/%s", functionName)
}

// Fetch returns log events for functionName emitted since `since`, skipping
// anything at or before afterToken (the token returned by a prior Fetch
// call). Pass an empty afterToken on the first call.
func Fetch(ctx context.Context, client API, functionName string, since time.Time, afterToken string) (Batch, error) {
	var batch Batch
	skip := afterToken != ""

	paginator := cloudwatchlogs.NewFilterLogEventsPaginator(client, &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(LogGroupName(functionName)),
		StartTime:    aws.Int64(since.UnixMilli()),
		Limit:        aws.Int32(10000),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return batch, fmt.Errorf("cwlogs: failed to get log events: %w", err)
		}
		for _, e := range page.Events {
			if skip {
				if aws.ToString(e.EventId) == afterToken {
					skip = false
				}
			} else {
				batch.Lines = append(batch.Lines, strings.TrimSuffix(aws.ToString(e.Message), "\n"))
			}
			batch.AfterToken = aws.ToString(e.EventId)
		}
	}

	return batch, nil
}
