// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/vk/pipelibgo/internal/app"
	"github.com/vk/pipelibgo/internal/library"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// envDefaults are the environment-variable defaults for flags that are
// usually set per machine rather than per invocation.
type envDefaults struct {
	LogLevel    string   `env:"PIPELIBGO_LOG_LEVEL" envDefault:"info"`
	LogFormat   string   `env:"PIPELIBGO_LOG_FORMAT" envDefault:"json"`
	SearchPaths []string `env:"PIPELIBGO_SEARCH_PATHS" envSeparator:":"`
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// keyValueList is a repeatable key=value flag.
type keyValueList struct {
	entries []string
	pairs   map[string]string
}

func (kv *keyValueList) String() string { return strings.Join(kv.entries, ",") }

func (kv *keyValueList) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	if kv.pairs == nil {
		kv.pairs = make(map[string]string)
	}
	kv.entries = append(kv.entries, v)
	kv.pairs[key] = value
	return nil
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	defaults, err := env.ParseAs[envDefaults]()
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid environment configuration: %v", err)}
	}

	flagSet := flag.NewFlagSet("pipelibgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
pipelibgo - Runs pipeline modules resolved from attached libraries.

Usage:
  pipelibgo [options] MODULE_PATH

Arguments:
  MODULE_PATH
    Logical path of the entry module, dotted or slash-separated
    (e.g. 'deploy.canary' or 'deploy/canary').

Options:
`)
		flagSet.PrintDefaults()
	}

	var libs keyValueList
	var searchPaths stringList
	var bindings keyValueList
	flagSet.Var(&libs, "lib", "Attach a library as name=root. Repeatable; attachment order defines resolution order.")
	flagSet.Var(&searchPaths, "search-path", "Relative module search path consulted per library. Repeatable; defaults to 'modules'.")
	flagSet.Var(&bindings, "set", "Bind a variable as name=value in the entry module's scope. Repeatable.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	entryModule := flagSet.Arg(0)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	// Attachment order follows the order the -lib flags appeared in.
	libraries := make([]library.Library, 0, len(libs.entries))
	seen := make(map[string]struct{})
	for _, entry := range libs.entries {
		name, root, _ := strings.Cut(entry, "=")
		if _, dup := seen[name]; dup {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("library %q attached twice", name)}
		}
		seen[name] = struct{}{}
		libraries = append(libraries, library.Library{Name: name, Root: root})
	}

	paths := defaults.SearchPaths
	if len(searchPaths) > 0 {
		paths = searchPaths
	}

	vars := make(map[string]any, len(bindings.pairs))
	for k, v := range bindings.pairs {
		vars[k] = v
	}

	config, err := app.NewConfig(app.Config{
		EntryModule: entryModule,
		Libraries:   libraries,
		SearchPaths: paths,
		Bindings:    vars,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
