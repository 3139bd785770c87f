// Command-line interface to latticeview stores.
// Computes chunks of a classified lattice, inspects stores and renders cross-sections.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/latticeview/latticeview/app"
	"github.com/latticeview/latticeview/lattice"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// TOML configuration file.  Leave unset for the default torsion store.
	configFile = flag.String("config", "", "")

	// Alias of the configured store to use.
	storeAlias = flag.String("store", "", "")

	// Number of goroutines classifying points of a chunk.
	numWorkers = flag.Int("workers", 0, "")

	// Number of logical CPUs to use.
	useCPU = flag.Int("numcpu", 0, "")

	// Scripted input for render.
	keyScript = flag.String("keys", "", "")

	// Directory receiving rendered frames.
	outDir = flag.String("out", ".", "")

	// Camera position for render.
	startAt = flag.String("at", "", "")
)

const helpMessage = `
latticeview computes and views a classification of a huge integer lattice in chunks

Usage: latticeview [options] <command>

      -config     =string   TOML configuration file.  Default is a 3d torsion store in ./torsion-data
      -store      =string   Configured store to use.  Default is the config's default_store.
      -workers    =number   Goroutines classifying the points of a chunk.
      -numcpu     =number   Number of logical CPUs to use.
      -keys       =string   Scripted input for render, e.g. "right,right;shift,x;;^x".
      -out        =string   Directory receiving rendered frames.  Default is current directory.
      -at         =string   Camera position x,y,z for render.
      -verbose    (flag)    Run in verbose mode.
  -h, -help       (flag)    Show help message

Commands:

	about
	help
	init    [config file]      Write the default configuration (latticeview.toml).
	compute [n]                Compute the next n frontier chunks (default 1).
	list                       List computed chunks.
	next                       Show the chunk the next compute would fill.
	pick    <x> <y> [z]        Show the label of a lattice point.
	render                     Render frames of the viewer to PNG files.
`

// Output of commands.
var stdout io.Writer = os.Stdout

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = func() {
		fmt.Print(helpMessage)
	}
	flag.Parse()

	if flag.NArg() >= 1 && strings.ToLower(flag.Args()[0]) == "help" {
		*showHelp = true
	}

	if *runVerbose {
		lattice.SetLogMode(lattice.DebugMode)
	}
	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	if *useCPU != 0 {
		lattice.NumCPU = *useCPU
		runtime.GOMAXPROCS(lattice.NumCPU)
	}

	// Capture ctrl+c and other interrupts.  Computation in progress is abandoned without
	// writing a partial chunk.
	ctx, cancel := context.WithCancel(context.Background())
	stopSig := make(chan os.Signal, 1)
	go func() {
		for sig := range stopSig {
			log.Printf("Stop signal captured: %q.  Shutting down...\n", sig)
			cancel()
		}
	}()
	signal.Notify(stopSig, os.Interrupt, syscall.SIGTERM)

	err := DoCommand(ctx, flag.Args())
	cancel()
	lattice.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// DoCommand serves as a switchboard for commands.
func DoCommand(ctx context.Context, cmd []string) error {
	if len(cmd) == 0 {
		return fmt.Errorf("blank command")
	}
	args := cmd[1:]

	switch cmd[0] {
	case "init":
		return DoInit(args)
	case "about":
		return DoAbout()
	}

	config, err := loadConfig()
	if err != nil {
		return err
	}
	config.Logging.SetLogger()

	switch cmd[0] {
	case "compute":
		return DoCompute(ctx, config, args)
	case "list":
		return DoList(ctx, config)
	case "next":
		return DoNext(ctx, config)
	case "pick":
		return DoPick(ctx, config, args)
	case "render":
		return DoRender(ctx, config)
	default:
		return fmt.Errorf("unknown command %q, try 'latticeview help'", cmd[0])
	}
}

func loadConfig() (*app.Config, error) {
	if *configFile == "" {
		lattice.Debugf("No -config given, using default configuration.\n")
		return app.DefaultConfig(), nil
	}
	return app.LoadConfig(*configFile)
}
