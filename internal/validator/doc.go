// Package validator implements the precondition checks that run before two
// analyzed programs are correlated.
//
// Every check implements the Validator interface and is interchangeable from
// the host runner's point of view. The built-in set is small and closed;
// Default builds it from configuration.
//
// The central check is NoReturnCountValidator: it counts the functions marked
// non-returning in each program, ignoring placeholder functions that have no
// decoded instruction at their entry, and warns when the relative difference
// exceeds a configured threshold. A large difference usually means the two
// programs were analyzed with different settings.
package validator
