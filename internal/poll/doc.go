// Package poll waits for an external resource to reach a desired state,
// sleeping with exponential backoff between probes.
//
// It is used to wait for a Redshift cluster to become available after
// creation. The warehouse pipeline itself never retries.
//
// # Example Usage
//
//	poller := poll.New(poll.NewBackoff(60,
//	    poll.WithInitialDelay(10*time.Second),
//	    poll.WithMaxDelay(time.Minute),
//	))
//
//	err := poller.Until(ctx, func(ctx context.Context) (bool, error) {
//	    status, err := describe(ctx)
//	    return status == "available", err
//	})
//
// # Error Classification
//
// Probe errors that IsTransient recognizes (AWS throttling, 5xx service
// errors, temporary network failures) are treated like "not ready yet".
// Any other error stops polling immediately.
package poll
