// Package extractors contains format-specific text extractors.
// Each subpackage implements driven.Extractor for one document family.
package extractors
