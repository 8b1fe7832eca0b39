// Command lambda-debugger-proxy is deployed to AWS Lambda in place of the
// real function while debugging. It forwards every invocation to the
// developer's local emulator over SQS and returns whatever the local
// handler replies with.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/oxplot/starenv/autoload"

	"github.com/mathspace/lambda-debugger/internal/proxylambda"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lambda-debugger-proxy: ")

	log.Print(proxylambda.PrintEnv())

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load AWS config: %v", err)
	}

	h := &proxylambda.Handler{SQSClient: sqs.NewFromConfig(awsCfg)}
	lambda.StartWithContext(ctx, h.Invoke)
}
