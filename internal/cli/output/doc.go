// Package output renders replies and other data for minredis-cli.
//
//   - raw: redis-cli style text ("(integer) 3", "(nil)", numbered arrays)
//   - json: indented JSON
//   - yaml: YAML via gopkg.in/yaml.v3
//
// Replies are converted with FromValue before JSON or YAML encoding so the
// structured formats show plain strings, numbers and lists.
package output
