// Package thicket provides project-aware semantic safety for GameMaker
// Language (GML) tooling: a lexical project index, capability-gated context
// queries, and conservative rename planning. It answers whether rewriting an
// identifier in one file can break any other file in the project, and it
// never reports a rewrite as safe when it is not.
//
// # Pipeline
//
// Thicket operates in three layers:
//
//  1. Index: walk a project root, tokenize every eligible .gml file with a
//     word-boundary pattern, and freeze an identifier→files occupancy map.
//     Token scanning over-approximates on purpose; false positives only make
//     the system more conservative.
//
//  2. Context: an immutable query facade over one index snapshot —
//     occupancy checks, occurrence listing, Feather rename conflict
//     planning, loop-hoist name resolution. Every query is gated by a
//     declared capability.
//
//  3. Registry: resolves which project root owns a file path, enforces
//     forced-root and exclusion policy, and caches one context per root with
//     single-flight builds so concurrent callers share one scan.
//
// # Usage
//
// Create a Registry, ask it for the context owning a file, and query:
//
//	reg, err := thicket.NewRegistry()
//	if err != nil { ... }
//
//	ctx, err := reg.Context("/game/objects/player/Step_0.gml")
//	if err != nil { ... }
//	if ctx == nil {
//		// out of bounds or no project root: degrade, don't guess
//	}
//	if ctx.Has(thicket.CapOccupancy) && ctx.IsNameOccupied("player_hp") {
//		...
//	}
//
// A nil context is the normal degraded outcome for files outside a forced
// root, under excluded directories, or without an owning project; callers
// fall back to single-file behavior instead of crashing.
//
// # Rename planning
//
// [Registry.RenamePlanner] wires a [RenamePlanner] to an external
// [RefactorEngine]. The planner tries the preferred name plus 32 suffixed
// fallbacks, converts every engine failure into a per-candidate skip
// reason, and only accepts a candidate whose validated edit set stays
// inside the originating file. Without a semantic symbol id it degrades to
// local-fallback mode.
//
// # Snapshots
//
// An optional SQLite snapshot store ([OpenSnapshotStore]) persists built
// indexes so later CLI invocations warm-start instead of re-walking the
// project. Within a process an index is never invalidated; a CLI invocation
// is the unit of freshness and [Registry.Reset] is the explicit clear hook.
package thicket
