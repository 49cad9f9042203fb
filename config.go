package warden

import "github.com/EvilLord666/warden/internal/core"

// Options configures Initialize. Build it with NewOptions, or fill it
// directly and let Initialize validate it.
type Options = core.Options
