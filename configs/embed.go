// Package configs provides the embedded configuration template for lawrag.
//
// The template is embedded at build time with go:embed so `lawrag config
// init` can write a starter config in any distribution of the binary.
package configs

import _ "embed"

// ConfigTemplate is the annotated starter configuration written by
// `lawrag config init`.
//
//go:embed config.example.yaml
var ConfigTemplate string
