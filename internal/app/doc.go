// Package app contains the core application logic behind the gftool binary.
// It defines the App struct, its configuration, and the execution modes,
// decoupled from any specific entrypoint like a CLI.
package app
