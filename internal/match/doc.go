// Package match decides whether a newly observed process plausibly is the
// deferred launch a caller registered under a declared name.
//
// The rule is deliberately strict: the longest common substring of the
// observed image name (extension stripped) and the declared name must equal
// the whole declared name once whitespace is removed and both sides are
// lower-cased. "HeroesOfTheStorm" therefore matches "HeroesOfTheStorm_x64.exe"
// but not "Heroes.exe". Unrelated processes that embed the declared name are
// still accepted; there is no confidence threshold beyond that equality.
package match
