// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package prop implements named, typed, multi-dimensional property sets.
//
// A Set is built from a table of Spec rows. Each row becomes an Entry that
// stores values of a single Kind, optionally delegating reads to a GetHook
// and fanning writes out to SetHooks. A Set created with Sloppy accepts
// typed reads and writes of undeclared names and creates variable-dimension
// entries on demand.
//
// Sets carry no internal locking. Hooks run without any lock held and may
// call back into the same Set.
package prop
