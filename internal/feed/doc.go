// Package feed defines the process event feed the tracking engine consumes
// and provides Poller, a portable implementation that derives start and stop
// events by diffing successive process table snapshots.
//
// A feed delivers events from its own goroutine. Poller dispatches them
// sequentially and in an order where a parent's start precedes its
// children's, so a consumer that finishes handling one event before the
// next sees process trees grow top-down.
package feed
