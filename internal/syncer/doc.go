// Package syncer converges the vector index with the filesystem. It consumes
// file events, decides per file whether work is required via the tracker's
// content fingerprint, and runs the extract, chunk, embed, store pipeline.
//
// Events for the same path are processed strictly in order with at most one
// in flight; a newer event for a busy path replaces any queued one, so bursts
// collapse to the latest observation. Distinct paths proceed in parallel up
// to a configurable bound.
//
// Vector-store deletions are written to the tracker's pending-purge table
// before they are attempted, so a crash or store outage leaves tombstones
// that PurgePending retries rather than orphaned vectors.
package syncer
