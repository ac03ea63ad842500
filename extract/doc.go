// Package extract resolves source origins into plain text.
//
// Each source kind has its own extractor: inline text is passed through,
// URLs are fetched and stripped of markup, files are read by extension.
// A Registry dispatches by kind; DefaultRegistry wires up the built-ins.
package extract
