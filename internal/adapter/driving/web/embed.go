package web

import "embed"

// StaticFS holds the embedded single-page client (HTML, JS, CSS).
//
//go:embed static/*
var StaticFS embed.FS
