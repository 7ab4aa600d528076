// Package config defines the deploy settings shared by the lambda-deploy
// binaries and provides helpers to load, validate and save them as YAML.
//
// Command-line flags are layered on top of a settings file; Validate fills
// in defaults so a Config is always complete once it has been validated.
package config
