// Package main provides the entry point for the vtprecheck CLI.
//
// vtprecheck checks that two analyzed programs are comparable before version
// tracking correlates their functions. It warns when the programs disagree
// about how many functions never return, which usually means one of them was
// analyzed with different settings.
//
// Usage:
//
//	vtprecheck check <source> <destination>
//	vtprecheck check --pairs <file>
//
// See --help for all available options.
package main

// main is the entry point for vtprecheck.
func main() {
	Execute()
}
