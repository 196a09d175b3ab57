// Package driving defines the inbound ports: service contracts the CLI
// and TUI adapters call into.
package driving
