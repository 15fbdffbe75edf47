// Package http contains the HTTP handlers for the dashboard API: the
// chart and preview data endpoints, the upload preview endpoint, the CSV
// export download, and health/version probes. Handlers read only the
// immutable startup snapshot, so concurrent requests need no locking.
package http
