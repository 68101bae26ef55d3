// Package bigdata fetches regression fixtures from a big-data store and
// compares pipeline outputs against truth files.
//
// # Roots
//
// The store root comes from the TEST_BIGDATA environment variable and falls
// back to the public Artifactory instance. A root that exists on the local
// file system is read directly; a URL root is accessed over HTTP, using the
// Artifactory pattern-search API for globbing.
//
// # Layout
//
// Inputs live under [inputs_root, env, input_loc, ...] and truth files under
// [inputs_root, env, input_loc, ref_loc..., name]. A Suite carries these
// locations together with the comparison tolerances, playing the role of a
// regression-test base fixture.
//
// Tests using a Suite against the shared store should be skipped when
// TEST_BIGDATA is unset; local roots make the whole package usable in
// hermetic tests.
package bigdata
