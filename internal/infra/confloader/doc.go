// Package confloader loads DocMesh configuration via koanf.
//
// Sources overlay in priority order, lowest to highest:
//
//  1. Defaults pre-filled on the target struct
//  2. YAML configuration file
//  3. DOCMESH_-prefixed environment variables
//
// The package also provides a file watcher so a running server can
// pick up configuration changes without a restart.
package confloader
