// Package paths discovers the project root and resolves the standard project
// directories (data, logs, figures, scripts) relative to it.
package paths
