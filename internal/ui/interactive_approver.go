package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the user to type the target name
// to confirm destructive operations.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover reading stdin.
func NewInteractiveApprover(verbose bool) dwh.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

// RequestApproval prompts the user to type target to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, action, target string) (bool, error) {
	fmt.Fprintf(a.output, "\n⚠️  WARNING: You are about to %s '%s'\n", action, target)
	fmt.Fprintln(a.output, "This will permanently delete data and cannot be undone!")
	fmt.Fprintf(a.output, "\nTo confirm, type '%s' and press Enter: ", target)

	// The read goroutine outlives a cancelled context until stdin yields.
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == target {
			fmt.Fprintln(a.output, "✓ Confirmed. Proceeding...")
			return true, nil
		}
		fmt.Fprintf(a.output, "✗ Input '%s' does not match '%s'. Operation cancelled.\n", input, target)
		return false, nil
	}
}

var _ dwh.Approver = (*InteractiveApprover)(nil)
