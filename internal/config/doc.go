// Package config defines the format-agnostic configuration model for a
// pipeline definition, along with the Loader interface for producing it
// from files. The model is the single source of truth for the builder and
// the registry; the HCL front-end lives in a separate package so the model
// stays free of parser details beyond raw expressions.
package config
