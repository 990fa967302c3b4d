// Package exporter writes enriched MATT tables and report aggregations to
// CSV files under the configured reports directory. Files are written with
// a UTF-8 BOM by default so Excel opens them cleanly, since the reports'
// primary consumers live in spreadsheets.
package exporter
