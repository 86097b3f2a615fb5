// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (~/.geocache/config.toml)
//   - Watcher: fsnotify-based reload trigger for the config file
package file
