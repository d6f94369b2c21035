package main

import (
	"flag"
	"fmt"
	"os"
)

// Config defines program configuration.
type Config struct {
	Tokens  bool     // Write the token list instead of the parse tree.
	Output  string   // Directory for the XML files; default is beside each source.
	Sources []string // .jack files, or directories of them.
	Verbose bool     // Verbose logging.
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config

	flag.Usage = func() {
		fmt.Printf("%s [options] <file.jack|dir>...\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.BoolVar(&c.Tokens, "t", false, "Write the token list (My<name>T.xml) instead of the parse tree (My<name>.xml).")
	flag.StringVar(&c.Output, "o", "", "Directory to write the XML files to.")
	flag.BoolVar(&c.Verbose, "v", false, "Verbose mode.")
	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	c.Sources = flag.Args()
	if len(c.Sources) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	return &c
}
