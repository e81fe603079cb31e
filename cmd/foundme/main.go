// Package main provides the entry point for the foundme CLI.
//
// foundme is a self-OSINT tool: it searches public sources for traces of
// an identity (username, email address, phone number), correlates what it
// finds, and reports the resulting exposure with concrete remediation
// steps.
//
// Usage:
//
//	foundme investigate <identifier>
//	foundme report <identifier> --risk --recommendations
//
// See --help for all available options.
package main

// main is the entry point for foundme.
func main() {
	Execute()
}
