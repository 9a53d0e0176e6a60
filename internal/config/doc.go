// Package config loads, normalizes, and validates labcert configuration.
//
// Settings come from a TOML file (default ~/.config/labcert/config.toml, or
// labcert.toml in the working directory) layered over repository defaults,
// then LABCERT_* environment variables override individual keys. The
// resulting Config hands ready-made option structs to the blob, ledger,
// render, certificate, and logging packages.
package config
