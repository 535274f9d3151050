// Package web holds the embedded page templates and static assets served by
// internal/http.
package web

import "embed"

// TemplatesFS holds the page and partial templates, keyed by file name.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the page script.
//
//go:embed static/*
var StaticFS embed.FS
