package dwh

import "context"

// Approver handles user interaction for approval workflows,
// such as dropping the warehouse tables or deleting the cluster.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the target name for confirmation
type Approver interface {
	// RequestApproval prompts for confirmation before a destructive action.
	// action describes what will happen, target is the name the user must type.
	RequestApproval(ctx context.Context, action, target string) (bool, error)
}
