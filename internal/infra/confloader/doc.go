// Package confloader loads configuration with koanf and watches config
// files with fsnotify.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (MINREDIS_SECTION_FIELD)
//  3. YAML configuration file
//  4. Values already present in the target struct
package confloader
