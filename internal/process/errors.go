package process

import "github.com/EvilLord666/warden/internal/sentinel"

// ErrLookup wraps a failure to read process metadata (path, command line).
// The engine recovers from it locally by keeping blank metadata.
const ErrLookup = sentinel.Error("process lookup failed")

// ErrTermination wraps a failure of the terminate primitive.
const ErrTermination = sentinel.Error("process termination failed")

// ErrInvalidPID is returned for ids that cannot name an OS process.
const ErrInvalidPID = sentinel.Error("invalid process id")
