// Package hcl is the HCL front-end of the pipeline definition language. It
// discovers .hcl files, decodes pipeline and manifest blocks, performs the
// parse-time checks that do not need the full model (literal for_each
// collections, manifest type expressions), and translates everything into
// the format-agnostic config model consumed by the builder.
package hcl
