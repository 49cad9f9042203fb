// Package sentinel defines Error, a string-backed error type that can be
// declared as a const.
//
// warden exposes its failure categories (permission, configuration,
// subscription, lookup, termination) as const values of this type so that
// callers cannot reassign them and errors.Is keeps working through wrapped
// chains.
package sentinel
