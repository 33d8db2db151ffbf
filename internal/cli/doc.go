// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// builds the cobra command tree, translates flags into the application's
// configuration and renders query reports as YAML or text.
package cli
