// Package enum defines the enumerated types used across the application.
// Exported types are generated by go-pkgz/enum, extensions live in *_ext.go files.
package enum

//go:generate go run github.com/go-pkgz/enum@latest -type theme -lower
type theme int

const (
	themeAuto  theme = iota // enum:alias=system
	themeLight              // light
	themeDark               // dark
)

//go:generate go run github.com/go-pkgz/enum@latest -type backend -lower
type backend int

const (
	backendCookie backend = iota
	backendDB             // enum:alias=sql
)
