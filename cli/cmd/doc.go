// Package cmd implements the derap subcommands: the class and path
// cross-reference checks over a build directory, the single-file decoders
// (dump, bones, prop), the gear compat generator, and the init and version
// housekeeping commands.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the YAML configuration file written by [Init].
	ConfigIdentifier = "config"

	// JobsIdentifier is the kong variable identifier containing the default
	// number of addons decoded at once.
	JobsIdentifier = "jobs"

	// SuggestIdentifier is the kong variable identifier containing the default
	// number of suggestions attached to an unresolved reference.
	SuggestIdentifier = "suggest"
)
