// Package app connects the command line to the token acquisition service.
// It launches a run, encodes a successful outcome as the token payload on
// stdout and maps every outcome to the process exit code.
package app
