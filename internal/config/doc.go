// Package config defines the format-agnostic interfaces through which the
// application reads exposures and writes regrouped sources.
//
// Concrete implementations, such as the HCL one, live in separate packages
// so that the regrouping core never depends on a file format.
package config
