// Package remote speaks SFTP to the seedbox or file server that holds the
// incoming media. Listings are filtered (junk names, image and metadata
// extensions, files modified inside the grace window) before anything else
// sees them, so callers only ever handle transferable entries.
package remote
