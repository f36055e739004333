// Package nerfconf implements the flat `key = value` configuration format
// used by NeRF training experiments.
//
// Each file is one experiment configuration: an ordered list of assignments,
// one per line, with blank lines permitted and no nesting. Values are typed
// as cty values (string, bool, number) so the profile layer can validate and
// convert them without reparsing, and bare flag lines are accepted for
// compatibility with argparse-style store_true options.
package nerfconf
