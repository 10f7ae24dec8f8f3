// Package document implements the SG document codec and file conventions.
//
// An SG document is a Markdown file with two structured parts:
//   - a YAML front matter block (muid, title, graph_version,
//     last_update_timestamp, tags) delimited by "---" lines, and
//   - exactly one fenced ```json block holding the graph data
//     (nodes, relations, and other top-level properties).
//
// Prose outside those two parts is preserved byte-for-byte across a
// load/save cycle; only the front matter and the JSON block are rewritten.
// The JSON block is serialized canonically: object keys sorted, strings
// NFC-normalized, no HTML escaping, nodes ordered by MUID and relations by
// MUID-else-LID, so that repeated saves of an unchanged graph are
// byte-identical.
//
// The package also owns the file naming conventions: the active log file
// for X.md is X_log.md, archives are X_log_archive_<timestamp>.md, and
// safety backups are X.backup_<command>_<timestamp>.md.
package document
