// Package loader retrieves the CMS configuration document from a local file or
// an HTTP(S) URL, parses it, and publishes the result to storage.
package loader
