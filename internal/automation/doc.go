// Package automation provides the rule engine for Hearth Core.
//
// A Rule pairs a Trigger (a stimulus category plus conditions) with an
// ordered list of device actions, optionally limited to a weekly
// schedule window.
//
// Architecture:
//
//	┌───────────────────────────────────────────────────────┐
//	│                  Engine (engine.go)                    │
//	│  ┌──────────────┐    ┌──────────────┐                 │
//	│  │   Registry   │───▶│  Repository  │                 │
//	│  │(registry.go) │    │ (collection) │                 │
//	│  └──────────────┘    └──────────────┘                 │
//	│        │                                              │
//	│        ▼                                              │
//	│  ┌──────────────────────────────────────────────┐     │
//	│  │  Evaluation (evaluate.go)                     │    │
//	│  │  1. Schedule window                           │    │
//	│  │  2. Conditions, AND, fail closed              │    │
//	│  │  3. Actions in order via device control       │    │
//	│  │  4. Stamp LastTriggered, run fire hooks       │    │
//	│  └──────────────────────────────────────────────┘     │
//	└───────────────────────────────────────────────────────┘
//
// # Evaluation Rules
//
//   - A rule with no conditions never fires on its own; it can only be
//     run explicitly with RunAutomation.
//   - greater and less compare numbers only. Any other value makes the
//     condition false rather than an error.
//   - An action whose device no longer exists is skipped. The rule still
//     counts as fired and LastTriggered is updated.
//   - Device changes made by a firing rule do not trigger further rules.
//
// # Thread Safety
//
// Registry and Engine are safe for concurrent use from multiple goroutines.
// Engine serialises evaluations.
//
// # Usage
//
//	registry := automation.NewRegistry(persistence.NewCollection[*automation.Rule](store, persistence.KeyAutomations))
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
//	engine := automation.NewEngine(registry, devices, log)
//	devices.Subscribe(engine.HandleDeviceEvent)
//	fired := engine.Evaluate(ctx)
package automation
