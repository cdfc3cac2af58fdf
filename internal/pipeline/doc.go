// Package pipeline implements the in-process rendering stages: markdown to
// HTML conversion, document wrapping, and resource path materialization.
package pipeline
