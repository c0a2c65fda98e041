package templates

import "embed"

// PagesFS contains the HTML pages served by the API for browser-based
// registration, login, and profile viewing.
//
//go:embed pages/*.html
var PagesFS embed.FS
