// Package watcher observes a directory tree and emits debounced file events.
//
// On Start the watcher walks the tree, emitting a created event for every
// existing regular file, so the index reconciles changes made while the
// process was down. It then streams fsnotify events: write bursts on one
// path settle for a debounce window and collapse into a single event, while
// removals and renames bypass the debounce entirely. A path that vanishes
// during its debounce window is reported as a deletion.
//
// Hidden files and directories are ignored, as are paths under any
// configured ignore prefix. Directories created after Start are added to the
// watch and their contents scanned, since files can land in them before the
// watch registers.
//
// Event delivery per path follows filesystem observation order. Consumers
// needing per-path serialization (the sync engine does) impose it on their
// side; the watcher only guarantees it does not reorder what fsnotify
// reports for a single path.
package watcher
