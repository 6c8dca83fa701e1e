// Package security gates every action the oracle proposes before anything
// touches the filesystem or spawns a process.
//
// The security controller sits between the oracle's proposal and the
// sandboxed operations, and decides through:
//
//   - Path confinement (traversal tokens, sensitive system fragments,
//     component-wise containment in the working root)
//   - Command allow-listing (base token allow-set plus a whole-word denylist
//     scanned over the full command text)
//   - Destructive-action confirmation (deletion always asks; no answer means no)
//
// Checks return a Verdict and never have side effects other than the
// confirmation prompt of the delete gate.
package security
