package rishiwrites

import "embed"

// EmbeddedAssets contains the assets shipped with the site:
// site.js, site.css and a fallback favicon.svg
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
