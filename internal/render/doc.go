// Package render turns a probed source plus one sampled parameter set into a
// concrete encode: geometry math, the composition filter graph, and the
// ffmpeg invocation that writes the output file. Plan construction is pure so
// the graph and argument vector can be tested without running ffmpeg.
package render
