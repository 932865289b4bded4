// Package asyncx provides the concurrency primitives used across the service:
// fan-out, worker pools, timeouts, futures and fire-and-forget, all with
// first-class context support.
//
// # Futures
//
// A [Future] represents a value that will be computed asynchronously.
// Use [Run] to start work immediately in a goroutine and [Future.Await] to
// block until the result is ready. Await is safe to call from multiple
// goroutines and caches the result after the first resolution.
//
//	fut := asyncx.Run(func() (*User, error) {
//	    return repo.FindByEmail(ctx, email)
//	})
//
//	// ... do other work ...
//
//	user, err := fut.Await()
//
// # Fan-out
//
// [All] runs a set of functions concurrently and collects every result in
// the original order. It returns on the first error but still waits for all
// goroutines to finish, preventing goroutine leaks.
//
// [AllSettled] behaves like [All] but never short-circuits. It always returns
// one [Result] per function so callers can inspect individual outcomes.
// That makes it the building block for failure-isolated aggregation, where
// one slow or failing call must not take down its siblings.
//
//	results := asyncx.AllSettled(ctx, fetchA, fetchB, fetchC)
//	for _, r := range results {
//	    if r.OK() { ... }
//	}
//
// [Map] applies a transformation function to every element of a slice
// concurrently and returns the results in the original order. Results are
// correlated by input index, never by arrival order.
//
// # Worker Pool
//
// [Pool] is the bounded alternative to [AllSettled]. It limits concurrency to
// a fixed number of workers, making it suitable for workloads that must not
// overwhelm downstream resources such as database connections or rate-limited
// APIs.
//
// # Timeout
//
// [WithTimeout] runs a function with a hard deadline. If the function does not
// finish within the given duration it returns [context.DeadlineExceeded].
//
// # Fire-and-Forget
//
// [Do] launches a goroutine without tracking its result, useful for
// non-critical background work. [DoCtx] additionally checks whether the
// context is already cancelled before starting.
//
// # Design Notes
//
// All functions that accept a [context.Context] propagate cancellation and
// deadlines to the work they coordinate. Goroutines are never abandoned:
// every helper waits for launched goroutines to finish before returning.
//
// The package has no external dependencies and relies solely on the Go
// standard library.
package asyncx
