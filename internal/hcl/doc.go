// Package hcl provides the HCL implementation of the config.Loader and
// config.Writer interfaces: exposure files are parsed with gohcl, metadata
// attributes travel as cty values and regrouped sources are written back
// with hclwrite.
package hcl
