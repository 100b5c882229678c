// Package crs implements a systematic Cauchy Reed-Solomon erasure code over
// GF(256). Encode turns k equal-length data blocks into m recovery blocks;
// Decode reconstructs the k data blocks from any k surviving blocks out of
// the k+m the matching Encode call produced.
//
// The package has no I/O and no logging: callers own buffer allocation,
// transport, and observability. See the wire, transport, and bench packages
// for those concerns layered on top.
package crs
