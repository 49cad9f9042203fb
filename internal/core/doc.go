// Package core implements the process-tree tracking engine behind the public
// warden API: the Manager lifecycle (initialize, stop, flush) driven by an
// atomic state machine, the Registry of tracked roots, and the correlator
// that fans every start and stop event out across all roots in parallel.
package core
