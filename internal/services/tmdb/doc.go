// Package tmdb provides a thin client for The Movie Database API, limited
// to the TV lookups show bootstrapping needs: title search, show details,
// and per-season episode lists.
package tmdb
