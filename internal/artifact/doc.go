// Package artifact loads analyzed-program exports from disk.
//
// An export lists a program's functions (entry address, name, no-return flag)
// and the addresses at which the analyzer decoded an instruction. The format
// is YAML; JSON exports are accepted as well since YAML is a superset of JSON.
//
//	name: libfoo.so
//	functions:
//	  - entry: 0x401000
//	    name: main
//	  - entry: 0x401200
//	    name: fatal
//	    noReturn: true
//	instructions: [0x401000, 0x401200]
//
// Loaded programs carry a SHA3-256 digest of their content so reports can tell
// whether a stored artifact was re-analysed between runs.
package artifact
