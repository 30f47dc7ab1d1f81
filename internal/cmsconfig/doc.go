// Package cmsconfig parses the CMS site/record configuration that drives the
// admin panel: navigation (site items) and per-record list views. Parsing is a
// pure, fail-fast pass over an untyped document.Value; the first violation
// aborts the whole parse with a *ConfigError.
package cmsconfig
