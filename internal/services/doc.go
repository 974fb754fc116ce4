// Package services holds cross-cutting helpers shared by Shuttle's external
// service clients and pipeline components: error classification sentinels
// and context annotation for correlated logging.
package services
