//go:build !production
// +build !production

package build

// Deployment specifies the build type for the current compilation.
var Deployment = Development

// LogLevel specifies the default log level for loggers created via
// NewSubLogger in a development build running LogTypeStdOut.
var LogLevel = "info"
