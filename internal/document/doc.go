// Package document models untyped configuration input as a closed recursive
// value (null, bool, int, float, string, sequence, mapping). Decoding from YAML
// happens here so that downstream validation never touches dynamically typed
// data.
package document
