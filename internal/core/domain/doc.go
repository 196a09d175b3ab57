// Package domain contains the core business entities for redline-cli:
// raw uploaded files, parsed documents, and tracked-change sessions.
// It has no dependencies on adapters or infrastructure.
package domain
