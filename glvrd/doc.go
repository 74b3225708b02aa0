// Package glvrd is a client for the Glavred proofreading API.
//
// A Client owns one session token and renews it lazily: every call that
// needs authentication first checks the stored expiry against the clock
// and requests a new session when it has passed. Hints are cached per
// session token, and proofreading results are decorated with all missing
// hints in a single batched request.
//
// Features:
//   - Lazy session renewal, optionally single-flight
//   - Per-session hint cache with batched fetches
//   - Readability score (0-10) computed locally
//   - Circuit breaker and retry wrappers around the transport
//   - Prometheus metrics integration
//
// Basic usage:
//
//	c, err := glvrd.New(glvrd.NewDefaultConfig("my-app"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := c.Proofread(ctx, "Одной из важных.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(*res.Score, len(res.Fragments))
package glvrd
