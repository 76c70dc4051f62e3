// Package dbgp implements the two DBGp framings used on a relayed session and
// the rewriting of the file paths they carry.
//
// IDE to engine: commands terminated by a single NUL byte.
//
//	breakpoint_set -i 4 -t line -f "file:///src/a.php" -n 10\0
//
// Engine to IDE: a decimal length, NUL, the XML payload, NUL.
//
//	215\0<?xml version="1.0" encoding="iso-8859-1"?><response .../>\0
package dbgp
