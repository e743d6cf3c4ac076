// Package site embeds the posts published on the blog.
package site

import "embed"

// Content holds posts.yaml and the markdown bodies under posts/.
//
//go:embed posts.yaml posts
var Content embed.FS
