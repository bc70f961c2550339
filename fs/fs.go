// Package fs embeds static assets needed at runtime.
package fs

import "embed"

//go:embed migrations
var FS embed.FS
