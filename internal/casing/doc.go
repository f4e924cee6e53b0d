// Package casing rewrites the object keys of JSON values.
//
// Normalize converts snake_case keys to camelCase the way API responses are
// prepared for display: every underscore that is immediately followed by an
// ASCII lowercase letter is dropped and the letter upper-cased. Any other
// character, including an underscore before a digit, an uppercase letter,
// another underscore or the end of the key, is copied unchanged.
//
// Arrays are rewritten element by element and objects member by member. All
// other values are returned as they are. Inputs are never modified; a new
// structure is built for every array and object.
//
// When two source keys rewrite to the same key (for example "a_b" and "aB")
// the later member wins and the key keeps the position of the first one.
package casing
