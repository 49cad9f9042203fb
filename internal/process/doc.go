// Package process implements the OS-facing collaborators of the tracking
// engine: metadata lookup, the terminate primitive, the privilege check,
// executable header inspection, and launching a supervised command.
//
// Lookup and termination go through gopsutil so the same code serves Linux,
// macOS and Windows. Every failure is wrapped in one of the package's
// sentinel errors (ErrLookup, ErrTermination) so the engine can classify it
// without caring about the platform.
package process
