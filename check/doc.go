// Package check validates the cross-references of a batch of addons.
//
// Checking runs in two passes. [Collect] decodes the configs of every addon
// in parallel and builds one immutable [Index] of the classes declared and
// the files shipped by the whole batch. A [Checker] then extracts the class
// or path references of each addon and reports those that are local to the
// addon but missing from the index.
//
//	index, units, failures := check.Collect(ctx, sources)
//	summary := check.Checker{Index: index}.Run(ctx, check.KindClasses, units, failures)
//	if !summary.OK() {
//		os.Exit(1)
//	}
//
// A reference is local when it belongs to the mod being checked. For classes
// that is decided with the mod tag (see [source.Source.Tag]); for paths with
// the mod root (see [source.Source.ModRoot]). [MatchPrefix] requires the
// reference to start with the tag or root. [MatchContains] accepts any
// reference containing it.
package check
