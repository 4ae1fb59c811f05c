// Command quote prints the preferred PostNL and DHL service for a parcel.
//
// Usage:
//
//	quote <length> <width> <height> <weight> [country]
//	quote 19.6 13 1.3 170
//	quote 19.6 13 1.3 170 BE
//
// Dimensions are in centimeters, weight in grams.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"parcelrate/internal/config"
	"parcelrate/internal/logging"
	"parcelrate/internal/rate"
	"parcelrate/internal/tariff"
)

var errUsage = errors.New("usage")

// inputError reports a malformed command line value.
type inputError struct{ err error }

func (e *inputError) Error() string { return "invalid input: " + e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(markPositionals(cmd, args))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	var inErr *inputError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprint(stderr, cmd.UsageString())
	case errors.As(err, &inErr):
		fmt.Fprintf(stderr, "Error: Invalid input - %v\n", inErr.err)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var (
		tariffsPath string
		logLevel    string
	)
	// Environment provides the flag defaults; flags override.
	env, envErr := config.LoadCLI()
	if envErr != nil {
		env = config.CLI{LogLevel: "warn"}
	}

	cmd := &cobra.Command{
		Use:   "quote <length> <width> <height> <weight> [country]",
		Short: "Find the preferred PostNL and DHL service for a parcel",
		Long: `Evaluates the tariff table for a parcel of the given dimensions (cm) and
weight (g). Country defaults to the Netherlands; BE, Belgium and België
select Belgian tariffs.`,
		Example: "  quote 19.6 13 1.3 170\n  quote 19.6 13 1.3 170 BE",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 4 || len(args) > 5 {
				return errUsage
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			if err := config.ValidateLogLevel(logLevel); err != nil {
				return fmt.Errorf("--log-level %w", err)
			}
			parcel, err := parseParcel(args)
			if err != nil {
				return err
			}

			logger, err := logging.New(logLevel, "console")
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			table, err := tariff.Load(tariffsPath)
			if err != nil {
				return err
			}
			logger.Debug("tariffs loaded", zap.String("path", tariffsPath))

			line, ok := rate.NewEngine(table, logger).Estimate(parcel).Summary()
			if !ok {
				line = rate.NoOptionsMessage
			}
			fmt.Fprintln(stdout, line)
			return nil
		},
	}

	cmd.Flags().StringVar(&tariffsPath, "tariffs", env.TariffsPath, "tariff document (defaults to the shipped tariffs, env TARIFFS_PATH)")
	cmd.Flags().StringVar(&logLevel, "log-level", env.LogLevel, "log level: debug, info, warn, error (env LOG_LEVEL)")
	return cmd
}

// markPositionals inserts "--" before the first positional argument so that
// negative numbers such as "-5" are not parsed as shorthand flags. Flags must
// therefore precede the positionals.
func markPositionals(cmd *cobra.Command, args []string) []string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return args
		}
		if _, err := strconv.ParseFloat(a, 64); err == nil || !strings.HasPrefix(a, "-") {
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i]...)
			out = append(out, "--")
			return append(out, args[i:]...)
		}
		if takesValue(cmd, a) {
			i++
		}
	}
	return args
}

// takesValue reports whether a is a flag given without "=" whose value is the
// next argument.
func takesValue(cmd *cobra.Command, a string) bool {
	if strings.Contains(a, "=") {
		return false
	}
	var f *pflag.Flag
	switch {
	case strings.HasPrefix(a, "--"):
		f = cmd.Flags().Lookup(strings.TrimPrefix(a, "--"))
	case len(a) == 2:
		f = cmd.Flags().ShorthandLookup(a[1:])
	}
	return f != nil && f.NoOptDefVal == ""
}

func parseParcel(args []string) (rate.Parcel, error) {
	var vals [4]float64
	for i, name := range []string{"length", "width", "height", "weight"} {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return rate.Parcel{}, &inputError{fmt.Errorf("%s: %q is not a number", name, args[i])}
		}
		vals[i] = v
	}
	country := ""
	if len(args) > 4 {
		country = args[4]
	}
	p, err := rate.NewParcel(vals[0], vals[1], vals[2], vals[3], tariff.ResolveCountry(country))
	if err != nil {
		return rate.Parcel{}, &inputError{err}
	}
	return p, nil
}
