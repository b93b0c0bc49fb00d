// Command mhm exercises the memhashmap engines. The bench command runs fixed scenarios and a random load on
// every engine, the repl command opens an interactive session on one hash map.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/op/go-logging"
	flag "github.com/spf13/pflag"

	"github.com/gostonefire/memhashmap/internal/logs"
)

var log = logging.MustGetLogger("mhm")

var stderrLogFormat = logging.MustStringFormatter(
	`%{color:reset}%{color}%{time:15:04:05.000} [%{module}] [%{shortfunc}] [%{level}] %{message}`,
)

const usage = `usage: mhm <command> [flags]

Commands:
  bench    run the fixed scenarios and a random load on every engine
  repl     interactive session on one hash map

Run 'mhm <command> --help' for the flags of a command.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(errOut, usage)
		return 2
	}

	switch args[0] {
	case "bench":
		return runBench(ctx, args[1:], out, errOut)
	case "repl":
		return runRepl(args[1:], out, errOut)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return 0
	}

	fmt.Fprintf(errOut, "unknown command %q\n\n%s", args[0], usage)

	return 2
}

// setupLogging - Installs a formatted stderr backend, engine debug messages are shown with --verbose
func setupLogging(errOut io.Writer, flagSet *flag.FlagSet) {
	backend := logging.NewBackendFormatter(logging.NewLogBackend(errOut, "", 0), stderrLogFormat)
	logging.SetBackend(backend)

	verbose, _ := flagSet.GetBool("verbose")
	if verbose {
		logs.SetLevel(logging.DEBUG)
		logging.SetLevel(logging.DEBUG, "mhm")
		log.Debug("verbose logging enabled")
		return
	}

	logs.SetLevel(logging.WARNING)
	logging.SetLevel(logging.WARNING, "mhm")
}
