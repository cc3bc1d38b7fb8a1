// Package util provides small helpers shared across packages: size
// parsing, string sanitizing and field validation.
package util
