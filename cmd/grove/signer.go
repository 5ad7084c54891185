package main

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"pkt.systems/grove/client"
)

// execSigner satisfies client.Signer by piping the challenge message to
// an external command's stdin and reading the signature from its stdout.
// This keeps key material out of the CLI entirely; any wallet tool that
// can sign a message on stdin works.
func execSigner(command string) client.Signer {
	return client.SignerFunc(func(ctx context.Context, message string) (string, error) {
		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Stdin = strings.NewReader(message)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return "", fmt.Errorf("sign command failed: %s: %w", msg, err)
			}
			return "", fmt.Errorf("sign command failed: %w", err)
		}
		signature := strings.TrimSpace(stdout.String())
		if signature == "" {
			return "", fmt.Errorf("sign command produced no signature")
		}
		return signature, nil
	})
}
