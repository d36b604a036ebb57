package static

import "embed"

// FS exposes site static assets for HTTP serving and static export.
//
//go:embed *.css *.js
var FS embed.FS
