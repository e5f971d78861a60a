// Package gate implements the access gate (the "unlock system").
//
// A Gate holds registered codes and symbolic markers plus a fixed table of
// secret phrases. AttemptUnlock tries them in priority order and stops at the
// first hit:
//
//  1. code: trimmed, lowercased input equals a registered code key
//  2. marker: a registered marker pattern occurs anywhere in the raw input,
//     first in registration order wins
//  3. phrase: a phrase from the fixed table occurs in the lowercased input,
//     first in table order wins
//
// A successful unlock appends an event to the history and, for codes only,
// raises the gate level. The level never decreases and the history is never
// truncated. Capabilities are informational strings, not enforced
// permissions.
//
// A failed attempt is an ordinary result carrying a hint drawn from a
// seedable random source, not an error.
//
// A Gate is owned by its caller and is not safe for concurrent use.
package gate
