package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

const dangerBanner = `
  !!! DANGER !!!
  About to %s: %s
`

// ForcedApprover implements the Approver interface for forced (non-interactive)
// approval. It displays a countdown and automatically approves after the countdown,
// used when the --force flag is provided.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a new ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) dwh.Approver {
	return &ForcedApprover{verbose: verbose, output: os.Stderr, sleepFn: time.Sleep}
}

// RequestApproval displays a countdown and automatically approves after the countdown.
func (a *ForcedApprover) RequestApproval(ctx context.Context, action, target string) (bool, error) {
	fmt.Fprintf(a.output, dangerBanner, action, target)
	fmt.Fprintln(a.output)

	countdownSeconds := int(dwh.DefaultForceApprovalCountdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.output)
			return false, ctx.Err()
		default:
			fmt.Fprintf(a.output, "\rProceeding in: %d seconds... (Press Ctrl+C to cancel)", i)
			a.sleepFn(time.Second)
		}
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding: %s %s                              \n", action, target)
	return true, nil
}

var _ dwh.Approver = (*ForcedApprover)(nil)
