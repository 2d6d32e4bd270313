// Package rig implements the test orchestration engine.
//
// The engine is the heart of the framework - it reserves hardware
// resources through the device manager, sequences test groups, carries
// the ambient reporting context across test bodies, and aggregates
// results into the run summary and exit status.
//
// ARCHITECTURE:
//
// Three Sequential Phases:
// A run is three strictly ordered phases with no overlap:
//  1. Initialization - the manager reserves every declared pin/port and
//     initializes every device, all-or-nothing. A conflict or init
//     failure rolls everything back and aborts before any test runs.
//  2. Execution - groups run in registration order; within a group,
//     setup, tests in order, teardown. Failures never stop the run.
//  3. Cleanup - devices are released unconditionally, then the summary
//     is rendered and the final state decided.
//
// Everything is single-threaded: no two devices initialize
// concurrently, no two tests run concurrently, and nothing here
// suspends. A driver call that blocks, blocks the run. This buys
// deterministic ordering, reproducible transcripts, and lock-free
// bookkeeping.
//
// CRITICAL PATTERNS:
//
// Counter invariant:
// total == passed + failed holds after every ReportResult call. The
// counters only grow; nothing deduplicates repeated reports.
//
// Context discipline:
// The ambient reporting context is set immediately before a body,
// setup, or teardown runs and cleared on every exit path, so a stray
// assertion after a test can never attribute itself to it.
//
// State machine (per run):
//
//	NOT_STARTED -> INITIALIZING -> {ABORTED | RUNNING} -> CLEANING_UP -> {PASSED | FAILED}
//
// ABORTED is reachable only from INITIALIZING and is terminal.
package rig
