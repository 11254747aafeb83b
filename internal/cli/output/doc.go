// Package output renders docmesh-cli results.
//
// A Formatter turns command results into one of three formats: an
// aligned table for humans (the default), or JSON/YAML for scripts.
// Table mode hides columns tagged `table:"wide"` unless the --wide
// flag is set.
package output
