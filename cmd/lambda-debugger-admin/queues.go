package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/spf13/cobra"

	"github.com/mathspace/lambda-debugger/internal/queue"
)

var queuesCmd = &cobra.Command{
	Use:   "queues",
	Short: "Inspect and manage the request/response SQS queues",
}

func init() {
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List queues matching the default proxy_lambda_re* naming prefix",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := newSQSClient(ctx)
			if err != nil {
				return err
			}
			urls, err := queue.ListQueues(ctx, client, "proxy_lambda_re")
			if err != nil {
				return err
			}
			for _, u := range urls {
				fmt.Println(u)
			}
			return nil
		},
	}
	queuesCmd.AddCommand(listCmd)

	purgeCmd := &cobra.Command{
		Use:   "purge queue-url",
		Short: "Drain a queue of all messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := newSQSClient(ctx)
			if err != nil {
				return err
			}
			n, err := queue.PurgeQueue(ctx, client, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d messages\n", n)
			return nil
		},
	}
	queuesCmd.AddCommand(purgeCmd)
}

func newSQSClient(ctx context.Context) (*sqs.Client, error) {
	acfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return sqs.NewFromConfig(acfg), nil
}
