package main

import (
	"fmt"
	"os"
)

// CLIConfig holds CLI flag values, populated by cobra during Execute.
type CLIConfig struct {
	Count        bool
	Invert       bool
	StrictAlign  bool
	IncludeNonIP bool
	ExactAtStart bool
	PatternFile  string
	Version      bool
	ConfigPath   string
	Debug        bool
	Verbose      bool
	Watch        bool
	MaxWorkers   int
}

var cliConfig = &CLIConfig{}

func debugPrintln(a ...interface{}) {
	if cliConfig.Debug {
		fmt.Println(a...)
	}
}

func verbosePrintln(a ...interface{}) {
	if cliConfig.Verbose {
		fmt.Println(a...)
	}
}

func verbosePrintlnf(format string, a ...interface{}) {
	if cliConfig.Verbose {
		fmt.Printf(format, a...)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func main() {
	Execute()
}
