// Command lambda-debugger-admin is an operator CLI for the SQS queues and
// CloudWatch Logs the debugger bridge depends on: finding/purging the
// request and response queues, and tailing the proxy lambda's logs. It
// does not deploy or configure the proxy lambda function itself.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	app := &cobra.Command{
		Use:     "lambda-debugger-admin",
		Short:   "Operator tools for the lambda-debugger SQS bridge",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
		},
	}

	app.AddCommand(queuesCmd)
	app.AddCommand(logsCmd)

	log.SetFlags(0)
	log.SetPrefix("lambda-debugger-admin: ")
	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
