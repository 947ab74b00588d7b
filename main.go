/*
 * PDP1 - Main process.
 *
 * Copyright 2026, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	getopt "github.com/pborman/getopt/v2"
	"github.com/spf13/afero"

	parser "github.com/rcornwell/PDP1/command/parser"
	reader "github.com/rcornwell/PDP1/command/reader"
	config "github.com/rcornwell/PDP1/config/configparser"
	loader "github.com/rcornwell/PDP1/rim/loader"
	ui "github.com/rcornwell/PDP1/ui"
	hex "github.com/rcornwell/PDP1/util/hex"
	logger "github.com/rcornwell/PDP1/util/logger"
	mif "github.com/rcornwell/PDP1/util/mif"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "PDP1.cfg", "Configuration file")
	optOutput := getopt.StringLong("output", 'o', "", "Output file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optInteractive := getopt.BoolLong("interactive", 'i', "Interactive console")
	optMenu := getopt.BoolLong("menu", 'm', "Tape selection menu")
	optVerbose := getopt.BoolLong("verbose", 'v', "Print decode statistics")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.SetParameters("tape ...")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger := slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, optDebug))
	slog.SetDefault(Logger)

	// Missing configuration file is only fatal when named explicitly.
	cfg := &config.Config{Filter: "RIM,PDP,BIN"}
	_, err := os.Stat(*optConfig)
	if err == nil {
		cfg, err = config.LoadConfigFile(*optConfig)
		if err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	} else if getopt.Lookup('c').Seen() {
		Logger.Error("Configuration file " + *optConfig + " can't be found")
		os.Exit(1)
	}

	fsys := afero.NewOsFs()
	session := parser.NewSession(fsys, cfg)

	if *optInteractive {
		reader.ConsoleReader(session)
		return
	}

	inputs := getopt.Args()
	if *optMenu {
		dir := cfg.TapeDir
		if dir == "" {
			dir = "."
		}
		name, err := ui.RunMenu(fsys, dir, cfg.Filter)
		if err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
		if name == "" {
			return
		}
		inputs = append(inputs, name)
	}

	if len(inputs) == 0 {
		getopt.Usage()
		os.Exit(1)
	}
	if *optOutput != "" && len(inputs) > 1 {
		Logger.Error("-o takes a single input file")
		os.Exit(1)
	}

	for _, name := range inputs {
		if err := convert(fsys, cfg, name, *optOutput, *optVerbose); err != nil {
			Logger.Error(name + ": " + err.Error())
			os.Exit(1)
		}
	}
}

// Convert one input file to a hex dump.
func convert(fsys afero.Fs, cfg *config.Config, name string, output string, verbose bool) error {
	img, stats, err := readImage(fsys, name)
	if err != nil {
		return err
	}
	if cfg.HasStart {
		img.SetStart(cfg.Start)
	}

	if output == "" {
		output = strings.TrimSuffix(name, path.Ext(name)) + ".hex"
		if cfg.HexDir != "" {
			output = path.Join(cfg.HexDir, path.Base(output))
		}
	}

	out, err := fsys.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := hex.WriteDump(out, img); err != nil {
		return err
	}

	slog.Info("converted " + name + " to " + output)
	if verbose {
		printStats(name, img, stats)
	}
	return nil
}

// Read a memory image, format chosen by file extension. RIM tape is the
// default.
func readImage(fsys afero.Fs, name string) (*loader.Image, loader.Stats, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".mif":
		file, err := fsys.Open(name)
		if err != nil {
			return nil, loader.Stats{}, err
		}
		defer file.Close()
		img, err := mif.Read(file)
		if err != nil {
			return nil, loader.Stats{}, err
		}
		return img, loader.Stats{Locations: img.Locations()}, nil

	case ".hex":
		file, err := fsys.Open(name)
		if err != nil {
			return nil, loader.Stats{}, err
		}
		defer file.Close()
		img, err := hex.ReadDump(file)
		if err != nil {
			return nil, loader.Stats{}, err
		}
		return img, loader.Stats{Locations: img.Locations()}, nil

	default:
		raw, err := afero.ReadFile(fsys, name)
		if err != nil {
			return nil, loader.Stats{}, err
		}
		img, stats := loader.Decode(raw)
		return img, stats, nil
	}
}

// Print decode statistics for one tape.
func printStats(name string, img *loader.Image, stats loader.Stats) {
	fmt.Printf("%s:\n", name)
	if stats.TapeBytes != 0 {
		fmt.Printf("  tape:      %d bytes, %d blocks, %d words\n",
			stats.TapeBytes, stats.Blocks, stats.Words)
		fmt.Printf("  deposited: %d words\n", stats.Deposited)
	}
	fmt.Printf("  locations: %d\n", img.Locations())
	if img.Locations() != 0 {
		low, high := img.Range()
		fmt.Printf("  range:     %04o-%04o\n", low, high)
	}
	fmt.Printf("  start:     %04o\n", img.Start())
}
