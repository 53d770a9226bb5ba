package config

import "github.com/spf13/pflag"

// RegisterFlags defines every flag understood by Load on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	// Encoder flags
	fs.String("encoder-options", "", "Encoder arguments, e.g. \"-q 80 -m 6\" (required)")
	fs.String("encoder", "cwebp", "Encoder binary")
	fs.String("suffix", ".webp", "Suffix appended to each output path")

	// Batch flags
	fs.String("source-dir", "", "Source root for files (required)")
	fs.String("result-dir", "", "Target root for encoded files (default: same as source)")
	fs.Int("workers", 1, "Number of concurrent workers")
	fs.String("types", "jpg,png", "Comma-separated file extensions to encode")
	fs.String("matches", "", "Comma-separated glob patterns on file names (default: match all)")
	fs.BoolP("purge", "d", false, "Delete existing output before encoding")
	fs.Bool("check-size", false, "Delete output when it is larger than the source")
	fs.Bool("show-progress", false, "Print a periodic status line to stderr")

	fs.String("log-level", "info", "Log level (debug/info/warn/error)")
	fs.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
}
