// Package scaffold provides the embedded templates the CLI uses to start a
// new post.
package scaffold

import "embed"

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// PostTemplate is the markdown body of a new post.
const PostTemplate = "templates/post.md.tmpl"
