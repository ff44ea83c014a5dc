// Package csvio is the delimited-text boundary around the core.
//
// The Decoder turns input rows into model.Transaction values: fields are
// whitespace-trimmed, the kind is matched case-insensitively, and client
// and tx ids are range-checked against their wire formats. A malformed row
// yields a *RecordError so the caller can skip it and keep reading.
//
// The Encoder writes the final account report, one row per account, with
// every monetary column carrying exactly four fractional digits.
package csvio
