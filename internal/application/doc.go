// Package application wires project start-up: it resolves the project root
// and directory layout, appends the scripts directory to PATH and sets up the
// named logger, keeping the main package focused on CLI parsing and output.
package application
