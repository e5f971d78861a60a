// Package dispatch implements the content dispatcher (the "drop engine").
//
// A Dispatcher holds a registry of named content items and a small state
// machine with a phase (dormant or active), a numeric depth, and the current
// anchor text. Dispatching an item first runs the shared denylist matcher
// over its text when the item asks for it:
//
//   - On a match the dispatcher returns a ShatterRecord and leaves state
//     untouched.
//   - Otherwise it returns a DeliveryRecord with the text decorated for the
//     current state, then applies the item's category transition.
//
// STATE MACHINE:
//
//	ritual -> phase=active, depth += weight
//	anchor -> anchor = text
//	reset  -> phase=dormant, depth = 0
//	other  -> no transition
//
// Depth never drops below zero and the record's phase snapshot is taken
// before the transition is applied.
//
// A Dispatcher is owned by its caller and is not safe for concurrent use.
package dispatch
