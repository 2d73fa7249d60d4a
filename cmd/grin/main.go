// Command grin compresses and decompresses files with a static Huffman code.
//
//	grin [-v] [-strict] encode infile outfile
//	grin [-v] [-strict] decode infile outfile
//
// Wrong arguments print the usage message and leave all files untouched.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/egonelbre/exp-grin-compression/grin"
)

const usage = "Usage: grin <encode|decode> <infile> <outfile>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("grin", flag.ContinueOnError)
	flags.SetOutput(stderr)
	verbose := flags.Bool("v", false, "log debug events")
	strict := flags.Bool("strict", false, "fail on a payload without an end marker")
	flags.Usage = func() {
		fmt.Fprintln(stdout, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if flags.NArg() != 3 {
		fmt.Fprintln(stdout, usage)
		return 0
	}
	mode, inPath, outPath := flags.Arg(0), flags.Arg(1), flags.Arg(2)

	codec := grin.Codec{Strict: *strict, Logger: logger}
	var stats grin.Stats
	var err error
	switch mode {
	case "encode":
		stats, err = codec.EncodeFile(inPath, outPath)
	case "decode":
		stats, err = codec.DecodeFile(inPath, outPath)
	default:
		fmt.Fprintln(stdout, usage)
		return 0
	}
	if err != nil {
		logger.Error(mode+"Failed", "in", inPath, "out", outPath, "err", err)
		return 1
	}

	p := message.NewPrinter(language.English) // For commas between thousands
	p.Fprintf(stdout, "%s %s: %d bytes plain, %d bytes packed (%.1f%%)\n",
		mode, outPath, stats.PlainBytes, stats.PackedBytes, 100*stats.Ratio())
	return 0
}
