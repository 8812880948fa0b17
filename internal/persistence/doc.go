// Package persistence stores Hearth's entity collections.
//
// Every owned collection (devices, rooms, automations, voiceCommands) and the
// advisory status snapshot is a map from id to JSON document, loaded and
// saved whole through a Gateway.
//
// Reads are served from the registries' in-memory caches; writes are handed
// to a Writer, which saves asynchronously and coalesces repeated saves of the
// same collection. Each write returns a *Result, so a caller may await
// durability or ignore it and accept eventual consistency. A failed save is
// logged and never rolls back the in-memory state; the next successful save
// of that collection reconciles the store.
//
// Usage:
//
//	store := persistence.NewStore(persistence.NewSQLiteGateway(db), persistence.WriterOptions{})
//	defer store.Close(ctx)
//
//	devices := persistence.NewCollection[*device.Device](store, persistence.KeyDevices)
//	res := devices.Save(snapshot)
//	_ = res.Wait(ctx) // optional
package persistence
