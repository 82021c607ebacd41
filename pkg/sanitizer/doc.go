// Package sanitizer normalizes free-text input before validation and
// storage.
//
// All functions are idempotent: applying them twice gives the same result
// as applying them once. They never fail; input that normalizes to nothing
// comes back as the empty string so validation can reject it.
//
// Normalization includes:
//   - Names and places: collapse whitespace, trim leading/trailing spaces
//   - Notes: keep line breaks, drop other control characters, trim each line
//   - Identifiers: trim surrounding whitespace only
package sanitizer
