// Package source loads decision tables from DMN XML files on disk and keeps
// a decision store in sync with them.
//
// FileSource reads a single file or walks a directory tree and converts every
// decision table it finds into a draft. Importer pushes those drafts through
// the lifecycle manager, creating new keys, versioning changed ones and
// leaving unchanged ones alone. Watcher re-runs the import when files change,
// debounced so editor save storms trigger one reload. A failed reload keeps
// the previously imported decisions in place.
package source
