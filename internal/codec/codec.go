// Package codec implements the oversize-payload wire encoding used on the
// response queue: SQS message bodies of 262,144 bytes or more are gzip
// compressed and Base58 encoded so they still fit inside a single message.
//
// Ported from the original's flate2 + bs58 pairing in
// runtime-emulator/src/sqs.rs and proxy-lambda/src/main.rs.
package codec

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/mr-tron/base58"
)

// MaxSQSMessageBytes is the hard SQS body size limit.
const MaxSQSMessageBytes = 262144

// Encode returns body unchanged if it is already small enough for SQS.
// Otherwise it gzips (fastest compression level) and Base58-encodes it.
// Callers must still check the result's length: a sufficiently large input
// can remain too big even after compression, in which case the caller drops
// the message rather than sending it.
func Encode(body string) (string, error) {
	if len(body) < MaxSQSMessageBytes {
		return body, nil
	}

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return "", fmt.Errorf("codec: failed to create gzip writer: %w", err)
	}
	if _, err := gz.Write([]byte(body)); err != nil {
		return "", fmt.Errorf("codec: failed to gzip payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("codec: failed to close gzip writer: %w", err)
	}

	return base58.Encode(buf.Bytes()), nil
}

// Decode reverses Encode. A body that is empty or starts with '{' after
// trimming leading whitespace is assumed to already be raw JSON and is
// returned unchanged; anything else is treated as Base58-encoded gzip and
// decoded, surfacing any failure to the caller.
func Decode(body string) (string, error) {
	trimmed := strings.TrimLeft(body, " \t\r\n")
	if trimmed == "" || trimmed[0] == '{' {
		return body, nil
	}

	raw, err := base58.Decode(body)
	if err != nil {
		return "", fmt.Errorf("codec: failed to base58-decode payload: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("codec: failed to open gzip reader: %w", err)
	}
	defer gz.Close()

	decoded, err := io.ReadAll(gz)
	if err != nil {
		return "", fmt.Errorf("codec: failed to gunzip payload: %w", err)
	}

	return string(decoded), nil
}
