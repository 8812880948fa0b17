// Package scheduler drives the engine periodically.
//
// Two independent loops run on their own tickers:
//
//   - the health tick flips a small random fraction of devices between
//     online and offline to simulate connectivity flakiness
//   - the automation tick evaluates the active rule set
//
// Neither tick overlaps its own next invocation: a tick that fires while
// the previous one is still running is skipped and counted. Stop cancels
// both loops and waits for any in-flight tick to return.
package scheduler
