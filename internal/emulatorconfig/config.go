// Package emulatorconfig resolves the emulator's single Config value from
// the command line and the environment, choosing between replaying a local
// payload file and bridging to the live request/response queues.
//
// Ported from original_source/lambda-debugger/src/config.rs.
package emulatorconfig

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	_ "github.com/oxplot/starenv/autoload"

	"github.com/mathspace/lambda-debugger/internal/queue"
)

const helpText = `AWS Lambda environment emulator for local and remote debugging.

1. run lambda-debugger
2. copy the env vars printed by the emulator
3. set the env vars in a separate terminal and start your lambda there

With local payload: lambda-debugger [payload_file], e.g. lambda_payload.json
With payload from AWS: lambda-debugger
`

const requiredEnvVars = "export AWS_LAMBDA_FUNCTION_VERSION=$LATEST && export AWS_LAMBDA_FUNCTION_MEMORY_SIZE=128 && export AWS_LAMBDA_FUNCTION_NAME=my-lambda && export AWS_LAMBDA_RUNTIME_API=127.0.0.1:9001"

// DefaultListenAddr is used when AWS_LAMBDA_RUNTIME_API is unset, matching
// the address a real Lambda execution environment would expose.
const DefaultListenAddr = "127.0.0.1:9001"

// LocalSource replays a single payload read once from disk; responses are
// logged, not sent anywhere.
type LocalSource struct {
	Payload  string
	FileName string
}

// RemoteSource bridges to the live request/response queues over SQS.
type RemoteSource struct {
	RequestQueueURL  string
	ResponseQueueURL string // empty if no response queue is configured
}

// Config is resolved once at process startup and never mutated afterward.
type Config struct {
	ListenAddr string
	Local      *LocalSource  // set when replaying from a file
	Remote     *RemoteSource // set when bridging to SQS
}

// FromEnv resolves Config from os.Args and the environment, exactly as the
// original's Config::from_env did: a local payload file takes priority over
// SQS, and the process exits if neither source is available. Env vars are
// loaded once via starenv's autoload side effect before this runs.
func FromEnv(ctx context.Context, sqsClient queue.API) (Config, error) {
	listenAddr := os.Getenv("AWS_LAMBDA_RUNTIME_API")
	if listenAddr == "" {
		listenAddr = DefaultListenAddr
	}
	if err := validateListenAddr(listenAddr); err != nil {
		return Config{}, err
	}

	if local, ok, err := getLocalPayload(os.Args); err != nil {
		return Config{}, err
	} else if ok {
		log.Printf("Listening on http://%s\n- payload from: %s", listenAddr, local.FileName)
		log.Printf("Add required env vars and start the lambda:\n%s", requiredEnvVars)
		return Config{ListenAddr: listenAddr, Local: &local}, nil
	}

	remote, err := getQueues(ctx, sqsClient)
	if err != nil {
		return Config{}, err
	}
	if remote == nil {
		return Config{}, fmt.Errorf("emulatorconfig: no payload source is set; add a payload file name as an argument for local debugging, or create the request/response queues for remote debugging")
	}

	log.Printf("Listening on http://%s\n- request queue:  %s\n- response queue: %s", listenAddr, remote.RequestQueueURL, remote.ResponseQueueURL)
	log.Printf("Add required env vars and start the lambda:\n%s", requiredEnvVars)
	return Config{ListenAddr: listenAddr, Remote: remote}, nil
}

func validateListenAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("emulatorconfig: invalid AWS_LAMBDA_RUNTIME_API %q: %w", addr, err)
	}
	if net.ParseIP(host) == nil {
		return fmt.Errorf("emulatorconfig: invalid IP address in AWS_LAMBDA_RUNTIME_API %q", addr)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("emulatorconfig: invalid port in AWS_LAMBDA_RUNTIME_API %q", addr)
	}
	return nil
}

// getLocalPayload looks for a payload file name among the CLI arguments.
// The position of that argument depends on whether the binary was invoked
// standalone or as a "<tool>-<subcommand>" subcommand (the same convention
// Cargo uses for cargo-* subcommands): when argv[0] ends in
// "<tool>-<argv[1]>", argv[1] is the subcommand name rather than the
// payload, and the payload is argv[2] instead of argv[1].
func getLocalPayload(args []string) (LocalSource, bool, error) {
	if len(args) == 0 {
		return LocalSource{}, false, nil
	}

	paramIdx := 1
	if len(args) > 1 && strings.HasSuffix(args[0], "-"+args[1]) {
		paramIdx = 2
	}

	if len(args) <= paramIdx {
		return LocalSource{}, false, nil
	}
	payloadFile := args[paramIdx]

	if payloadFile == "--help" || payloadFile == "-h" {
		fmt.Print(helpText)
		os.Exit(0)
	}

	data, err := os.ReadFile(payloadFile)
	if err != nil {
		return LocalSource{}, false, fmt.Errorf("emulatorconfig: failed to read payload from %s: %w", payloadFile, err)
	}
	return LocalSource{Payload: string(data), FileName: payloadFile}, true, nil
}

// getQueues resolves the request/response queue URLs from env vars, falling
// back to GetDefaultQueues only when at least one of the two is unset,
// since that lookup costs an SQS ListQueues call. Returns nil, nil when no
// request queue could be determined at all.
func getQueues(ctx context.Context, sqsClient queue.API) (*RemoteSource, error) {
	reqURL := os.Getenv("PROXY_LAMBDA_REQ_QUEUE_URL")
	respURL := os.Getenv("PROXY_LAMBDA_RESP_QUEUE_URL")

	if reqURL == "" || respURL == "" {
		defaults, err := queue.GetDefaultQueues(ctx, sqsClient)
		if err != nil {
			log.Printf("emulatorconfig: failed to look up default queues: %v", err)
		} else {
			if reqURL == "" {
				reqURL = defaults.RequestURL
			}
			if respURL == "" {
				respURL = defaults.ResponseURL
			}
		}
	}

	if reqURL == "" {
		return nil, nil
	}
	return &RemoteSource{RequestQueueURL: reqURL, ResponseQueueURL: respURL}, nil
}
