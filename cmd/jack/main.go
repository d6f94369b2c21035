// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/ezrec/hack/jack"
)

func main() {
	config := parseArgs()

	for _, source := range config.Sources {
		files, err := jackFiles(source)
		if err != nil {
			log.Fatal(err)
		}
		for _, path := range files {
			err = analyze(config, path)
			if err != nil {
				log.Fatal(err)
			}
		}
	}
}

// jackFiles expands a directory into its .jack files, in name order.
func jackFiles(path string) (files []string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if !info.IsDir() {
		files = []string{path}
		return
	}

	files, err = filepath.Glob(filepath.Join(path, "*.jack"))
	if err != nil {
		return
	}
	if len(files) == 0 {
		err = errors.Errorf("%s: no .jack files", path)
		return
	}
	slices.Sort(files)
	return
}

// outputPath names the XML file for a source: My<name>.xml for the parse
// tree, My<name>T.xml for the token list. The prefix keeps reference
// <name>.xml files beside the sources intact.
func outputPath(c *Config, path string) string {
	dir, base := filepath.Split(path)
	if len(c.Output) != 0 {
		dir = c.Output
	}

	name := "My" + strings.TrimSuffix(base, filepath.Ext(base))
	if c.Tokens {
		name += "T"
	}
	return filepath.Join(dir, name+".xml")
}

// analyze writes the token list or parse tree of a single Jack file.
func analyze(c *Config, path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	tokens, err := jack.Tokenize(inf)
	if err != nil {
		return errors.Wrapf(err, "%s", path)
	}

	var root *jack.Node
	if !c.Tokens {
		root, err = jack.Parse(tokens)
		if err != nil {
			return errors.Wrapf(err, "%s", path)
		}
	}

	output := outputPath(c, path)
	if c.Verbose {
		log.Printf("jack: %s -> %s", path, output)
	}

	ouf, err := os.Create(output)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	if c.Tokens {
		err = jack.WriteTokens(ouf, tokens)
	} else {
		err = root.WriteXML(ouf)
	}
	if err != nil {
		err = errors.Wrapf(err, "%s", output)
	}
	return
}
