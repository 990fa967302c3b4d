// Package dataprocessing implements the MATT enrichment pipeline: loading
// raw extracts and reference tables, the core enrichment transform that
// joins and derives the analysis columns, and the report aggregations the
// pages are built from.
//
// The enrichment is a pure, single-pass transform over in-memory tables.
// Parse failures on date cells degrade to nulls; structural failures
// (missing columns, malformed community identifiers) abort the run with a
// descriptive error. Output row count always equals input row count.
package dataprocessing
