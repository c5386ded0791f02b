// Package web embeds the dashboard templates and static assets.
package web

import "embed"

// TemplatesFS holds the page and its panels.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds stylesheets and scripts.
//
//go:embed static/*
var StaticFS embed.FS
