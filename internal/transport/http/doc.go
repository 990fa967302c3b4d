// Package http holds the HTTP handlers for the MATT report API:
// upload processing, report aggregations, mortgage rates and health.
package http
