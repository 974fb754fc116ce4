// Package catalog persists sync state in SQLite: tracked shows and their
// episode lists, the most recent remote snapshot, and the lifecycle record
// for every downloaded file. Remote paths key the downloaded-file table, so
// the snapshot-vs-downloaded diff is a single LEFT JOIN.
package catalog
