// Package template implements the directive language used by the notification
// email templates: dotted-path variable references with filter chains,
// truthiness-gated conditional blocks, and a render-time year token.
//
// Rendering is a pure transformation of (Template, Context) into a string.
// Parsed templates are immutable and safe for concurrent renders; the clock
// used by the now tag is injectable so output stays deterministic under test.
package template
