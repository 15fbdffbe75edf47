package main

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFrontend(t *testing.T) {
	data, err := fs.ReadFile(webFiles, "web/index.html")
	require.NoError(t, err)
	page := string(data)

	assert.Contains(t, page, "<title>Dashboard</title>")
	assert.Contains(t, page, "/api/bookings/export")
}

// Uploaded file contents are untrusted: every cell, column name, filename
// and raw excerpt must pass through the esc helper before reaching
// innerHTML, or markup in a booking CSV would execute in the page.
func TestEmbeddedFrontendEscapesUntrustedValues(t *testing.T) {
	data, err := fs.ReadFile(webFiles, "web/index.html")
	require.NoError(t, err)
	page := string(data)

	assert.Contains(t, page, "function esc(")
	for _, call := range []string{
		"esc(cell)",
		"esc(c)",
		"esc(r.hotel)",
		"esc(r.arrival_date)",
		"esc(preview.filename)",
		"esc(preview.raw_excerpt)",
	} {
		assert.Contains(t, page, call)
	}
}
