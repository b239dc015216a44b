// Package config loads, validates, and generates the optional rskill
// configuration file.
//
// Configuration may live next to the scanned code as .rskill.json or
// .rskill.yaml, or per-user under the OS config directory as
// rskill/config.{json,yaml}. JSON files are parsed as JSONC via
// github.com/tidwall/jsonc, so comments and trailing commas are fine;
// YAML files go through gopkg.in/yaml.v3.
//
// Every field is optional. Command-line flags the user sets explicitly
// always win over file values; the file only fills in what the command
// line leaves unset.
package config
