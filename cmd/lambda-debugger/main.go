// Command lambda-debugger runs a local emulator of the AWS Lambda Runtime
// Interface API, so a lambda handler binary can be built and run on a
// developer's own machine against real or replayed invocations.
package main

import (
	"context"
	"log"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/mathspace/lambda-debugger/internal/emulatorconfig"
	"github.com/mathspace/lambda-debugger/internal/rerunguard"
	"github.com/mathspace/lambda-debugger/internal/runtimeapi"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lambda-debugger: ")

	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load AWS config: %v", err)
	}
	sqsClient := sqs.NewFromConfig(awsCfg)

	cfg, err := emulatorconfig.FromEnv(ctx, sqsClient)
	if err != nil {
		log.Fatalf("%v", err)
	}

	srv := &runtimeapi.Server{
		Config:    cfg,
		SQSClient: sqsClient,
		Guard:     &rerunguard.Guard{},
	}

	log.Printf("listening on http://%s", cfg.ListenAddr)
	log.Fatalf("server stopped: %v", http.ListenAndServe(cfg.ListenAddr, srv.Handler()))
}
