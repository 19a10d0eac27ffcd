// Package logic evaluates the JSON-Logic subset used by data-card
// conditions.
//
// A condition is a JSON document such as
//
//	{"and": [{"==": [{"var": "scope"}, "subject"]}, {">": [{"var": "age"}, 17]}]}
//
// stored verbatim as a string on nodes and connections. The supported
// operators are the comparisons == != < > <= >=, membership "in", the
// logical "and"/"or", and variable lookup "var". Variable names are flat
// keys of the environment; a dotted name is looked up as a single key.
//
// Evaluation is strict: malformed JSON, unknown operators and type
// mismatches are returned as coded errors. Fail-open handling for the UI
// lives in the visibility package.
package logic
