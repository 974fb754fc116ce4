// Package transfer runs the sync pass: snapshot the configured remote
// roots, diff against the catalog, and download whatever is new through a
// bounded worker pool with per-worker SFTP sessions.
package transfer
