// Package serialization saves and loads array values in the SafeTensors
// format used by HuggingFace.
//
// Format:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: raw bytes]
//
// Entries are written in alphabetical order, packed row-major. Only values
// are stored: graph nodes and gradients are not part of the file. Write
// records a SHA-256 checksum of the data section in the metadata under
// ChecksumKey, and Read verifies it when present.
package serialization
