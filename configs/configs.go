// Package configs embeds the default rule tables shipped with the binary.
package configs

import "embed"

// FS holds games/default.yaml, games/<game>.yaml and
// games/<game>/products/<product>.yaml.
//
//go:embed games
var FS embed.FS
