// Package quality implements the post-load checks of the warehouse.
//
// Checker removes rows whose primary key is duplicated, keeping one
// representative per key. Reconciler compares the distinct key sets of two
// columns and reports the differences without repairing anything.
//
// NULL keys are not key values: the checker leaves NULL-key rows untouched
// and the reconciler ignores them.
package quality
