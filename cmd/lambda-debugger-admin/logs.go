package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/spf13/cobra"

	"github.com/mathspace/lambda-debugger/internal/cwlogs"
)

var (
	logsTail  bool
	logsSince uint
)

var logsCmd = &cobra.Command{
	Use:     "logs function-name",
	Aliases: []string{"log"},
	Short:   "Print recent CloudWatch Logs for the proxy lambda function",
	Args:    cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if args[0] == "" {
			return errors.New("must provide a function name")
		}

		ctx := context.Background()
		acfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("failed to load aws config: %w", err)
		}
		client := cloudwatchlogs.NewFromConfig(acfg)

		since := time.Now().Add(-time.Duration(logsSince) * time.Minute)
		var afterToken string
		for {
			batch, err := cwlogs.Fetch(ctx, client, args[0], since, afterToken)
			if err != nil {
				return err
			}
			for _, l := range batch.Lines {
				fmt.Println(l)
			}
			if !logsTail {
				return nil
			}
			afterToken = batch.AfterToken
			since = time.Now().Add(-30 * time.Second)
			time.Sleep(2 * time.Second)
		}
	},
}

func init() {
	logsCmd.Flags().BoolVarP(&logsTail, "tail", "t", false, "wait for new logs and print them as they come in")
	logsCmd.Flags().UintVarP(&logsSince, "since", "s", 1, "only print logs since this many minutes ago")
}
