// Package services holds the application services behind the HTTP
// handlers: upload processing, report aggregation and health checks.
package services
