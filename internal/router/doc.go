// Package router files downloaded media into the show library. Filenames
// are parsed for show, season, and episode; matched against tracked shows
// (including aliases); bare episode numbers resolve through the absolute
// episode catalog; and files move to "Season NN" folders keeping their
// original names.
package router
