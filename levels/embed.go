package levels

import "embed"

// LevelsFS holds the authored level pack.
//
//go:embed *.json
var LevelsFS embed.FS
