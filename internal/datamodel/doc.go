// Package datamodel defines the in-memory records the regrouper works on:
// exposures holding slit cutouts, the per-source groups built from them and
// the containers offering queries over a group.
package datamodel
