// Package file persists settings as TOML in the docsync config directory
// (~/.docsync/config.toml by default). Writes go through a temporary file
// and a rename so a crash never leaves a truncated config behind.
package file
