/*
Package experiment models the experiment definition document and the image
catalog derived from it.

# Config Document

The JSON document maps onto Config: a batch id, groups (each with an ordered
sequence of (subset, mode) stages), modes (instructions and randomization
policy), subsets (per-mode image directories), participant roles, and
defaults. Parse applies defaults (randomize=true, soft_timeout=true,
allow_resume=true, default_per_item_seconds=60) and validates that every
stage references an existing mode and subset.

# Loading and Caching

Loader caches the decoded document keyed on the file's modification time:

	loader := experiment.NewLoader(cfgPath, rootOverride)
	cfg, err := loader.Load()

Edits to the file are picked up on the next request without a restart, and an
unchanged file is never re-read or re-validated.

# Image Directories

A subset's per-mode directory is either a single path or a language-keyed map
(ImageDirSpec). Resolution order for maps: requested language, "en", first
key in sorted order. Relative paths resolve against the loader's project root
(the config file's directory, walking up one level when that directory is
named "config").

# Catalog

ListImages walks a resolved directory recursively, keeps the fixed image
extension allow-list (.png .jpg .jpeg .gif .webp), and yields stable ids
(relative path without extension), display titles, and URL paths preserving
the subdirectory structure. ShuffleEntries applies the deterministic
per-stage shuffle.
*/
package experiment
