// Package driven defines the outbound ports: interfaces the core depends
// on and adapters implement (extractors, storage, configuration).
package driven
