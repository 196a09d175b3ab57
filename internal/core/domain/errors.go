package domain

import "errors"

// Domain errors represent business logic failures.
// Extraction content problems are not errors: extractors report those
// through ParsedDocument.Success=false with guidance text.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown extractor or export variant.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrFileTooLarge indicates the file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrProposalParse indicates the AI edit proposal was not valid or
	// locatable JSON. This is the one extraction-adjacent path allowed to
	// fail hard: there is no safe fallback for an unparseable proposal.
	ErrProposalParse = errors.New("could not parse edit proposal")

	// ErrNoSession indicates no redline session exists yet.
	ErrNoSession = errors.New("no redline session")
)
