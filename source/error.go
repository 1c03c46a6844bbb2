package source

import "github.com/ardnew/derap/rap"

// Predefined errors (sentinel values).
var (
	ErrNoBuildDir = rap.NewError("build output directory not found")
	ErrNoAddons   = rap.NewError("no addons directory")
	ErrReadAddon  = rap.NewError("read addon")
)
