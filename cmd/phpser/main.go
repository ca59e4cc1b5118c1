// phpser - PHP serialize() CLI tool
//
// Usage:
//
//	phpser from-json [options] [file]   Convert JSON to PHP serialize() format
//	phpser from-yaml [options] [file]   Convert YAML to PHP serialize() format
//	phpser version                      Print version info
//
// Options:
//
//	--objects          decode JSON objects / YAML mappings as stdClass
//	--max-depth N      reject input nested deeper than N (0 = unlimited)
//	--config FILE      read defaults from a TOML file
//	--digest           print the SHA-256 of the output instead of the output
//	--verbose          log diagnostics to stderr
//
// If no file is given, reads from stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Neumenon/phpser/phpser"
)

const libVersion = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "phpser %s\n", libVersion)
		return 0
	case "help", "-h", "--help":
		printUsage(stderr)
		return 0
	case "from-json", "from-yaml":
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", cmd)
		printUsage(stderr)
		return 1
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		objects    bool
		maxDepth   int
		configPath string
		digest     bool
		verbose    bool
	)
	fs.BoolVar(&objects, "objects", false, "Decode objects/mappings as stdClass instead of associative arrays")
	fs.IntVar(&maxDepth, "max-depth", 0, "Maximum nesting depth of the input (0 = unlimited)")
	fs.StringVarP(&configPath, "config", "c", "", "TOML file with default settings")
	fs.BoolVar(&digest, "digest", false, "Print the SHA-256 of the output instead of the output")
	fs.BoolVar(&verbose, "verbose", false, "Log diagnostics to stderr")
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}

	cfg := defaultConfig()
	if configPath != "" {
		loaded, err := loadConfig(configPath)
		if err != nil {
			fmt.Fprintf(stderr, "phpser: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	// Explicit flags win over the config file.
	if fs.Changed("objects") {
		cfg.ObjectsAsStdClass = objects
	}
	if fs.Changed("max-depth") {
		cfg.MaxDepth = maxDepth
	}
	if fs.Changed("verbose") {
		cfg.Verbose = verbose
	}

	logger := newLogger(stderr, cfg.Verbose)
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	input := stdin
	if fileArg := fs.Arg(0); fileArg != "" && fileArg != "-" {
		f, err := os.Open(fileArg)
		if err != nil {
			log.Errorf("open file: %v", err)
			return 1
		}
		defer f.Close()
		input = f
	}

	data, err := io.ReadAll(input)
	if err != nil {
		log.Errorf("read input: %v", err)
		return 1
	}
	log.Debugf("read %d bytes, objects=%t max-depth=%d", len(data), cfg.ObjectsAsStdClass, cfg.MaxDepth)

	v, err := decode(cmd, data, cfg)
	if err != nil {
		log.Errorf("%s: %v", cmd, err)
		return 1
	}

	enc := phpser.NewEncoder(phpser.Options{MaxDepth: cfg.MaxDepth, Logger: logger})
	if digest {
		d, err := enc.Digest(v)
		if err != nil {
			log.Errorf("%s: %v", cmd, err)
			return 1
		}
		fmt.Fprintln(stdout, d.Hex())
		return 0
	}
	out, err := enc.Serialize(v)
	if err != nil {
		log.Errorf("%s: %v", cmd, err)
		return 1
	}
	fmt.Fprintln(stdout, out)
	return 0
}

// decode converts data to a value per cmd.
func decode(cmd string, data []byte, cfg config) (*phpser.Value, error) {
	opts := phpser.BridgeOpts{ObjectsAsStdClass: cfg.ObjectsAsStdClass, MaxDepth: cfg.MaxDepth}

	var (
		v   *phpser.Value
		err error
	)
	switch cmd {
	case "from-json":
		v, err = phpser.FromJSONWithOpts(data, opts)
	case "from-yaml":
		v, err = phpser.FromYAMLWithOpts(data, opts)
	default:
		return nil, errors.Errorf("unsupported command %q", cmd)
	}
	return v, err
}

// newLogger builds a console logger on w; verbose enables debug output.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	al := zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		al.SetLevel(zap.DebugLevel)
	}
	ec := zap.NewDevelopmentEncoderConfig()
	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.AddSync(w), al))
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `phpser - PHP serialize() CLI tool

Usage:
  phpser from-json [options] [file]   Convert JSON to PHP serialize() format
  phpser from-yaml [options] [file]   Convert YAML to PHP serialize() format
  phpser version                      Print version info

Options:
  --objects          Decode objects/mappings as stdClass
  --max-depth N      Reject input nested deeper than N (0 = unlimited)
  -c, --config FILE  Read defaults from a TOML file
  --digest           Print the SHA-256 of the output instead of the output
  --verbose          Log diagnostics to stderr

If no file is given, reads from stdin.
`)
}
