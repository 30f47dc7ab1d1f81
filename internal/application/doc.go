// Package application provides application initialization and dependency wiring.
// It creates the config loader, snapshot storage, reloader, API router and
// HTTP server, and performs the initial CMS config load so the main package
// stays focused on CLI parsing and orchestration.
package application
