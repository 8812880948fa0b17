// Package location provides the room registry.
//
// A Room groups devices by ID and carries per-room automation defaults:
// a light schedule, a temperature schedule with a current target, and
// security flags. Rooms are passive configuration. The engine never runs
// their schedules; a driver that wants them executed materialises them
// as automation rules.
//
// Membership in Room.DeviceIDs is informational. The device's own room
// reference is authoritative; AssignDevice keeps the two roughly in step.
//
// # Thread Safety
//
// Registry is safe for concurrent use from multiple goroutines.
package location
