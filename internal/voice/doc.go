// Package voice maps already-transcribed utterances to device actions.
//
// A Dispatcher holds Commands in registration order. Execute normalises
// the input, asks a Matcher for the first matching command, records its
// usage, applies its action to the devices its parameters select, and
// returns its canned response. Unmatched input returns a fallback string
// and changes nothing.
//
// The default SubstringMatcher accepts containment in either direction,
// so "lights" matches "turn on the lights". TokenMatcher is stricter and
// requires every phrase word to be present in the input.
package voice
