// Package piston implements a lossless byte-stream compressor based on Huffman
// codes.
//
// Compress counts the symbol frequencies of its input, builds a Huffman tree,
// derives a table of bit paths from it and packs the coded input MSB-first into
// bytes.  The result carries the packed bytes, the number of symbols encoded
// and the code table as a list of (symbol, path) pairs.  The tree itself is
// never transmitted: Decompress rebuilds a decoding trie from the paths alone.
//
// References:
//
//     <https://en.wikipedia.org/wiki/Huffman_coding>
//
//     <https://en.wikipedia.org/wiki/Prefix_code>
//
package piston
