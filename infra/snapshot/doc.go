// Package snapshot provides file-backed implementations of the core snapshot
// store: a SQLite database and a rotating JSONL file.
package snapshot
