package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/fluxcore/internal/config"
	"github.com/1broseidon/fluxcore/internal/daemon"
	"github.com/1broseidon/fluxcore/internal/ipc"
	"github.com/1broseidon/fluxcore/internal/x11"
)

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runWM(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "action":
		os.Exit(runAction(os.Args[2:]))
	case "workspace":
		os.Exit(runWorkspace(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fluxcore <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Manage the display (foreground)")
	fmt.Fprintln(w, "  status              Show window manager status")
	fmt.Fprintln(w, "  windows             List managed windows")
	fmt.Fprintln(w, "  reload              Reload configuration")
	fmt.Fprintln(w, "  action <name>       Run a key binding action on the focused window")
	fmt.Fprintln(w, "  workspace <n>       Switch to workspace n (0-based)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config actions      List bindable actions")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'fluxcore <command> --help' for command-specific options.")
}

// InitLogger installs a console handler whose level can change at runtime.
func InitLogger(level slog.Level) *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(level)
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level:   lv,
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	})))
	return lv
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runWM(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/fluxcore/config.yaml)")
	display := fs.String("display", "", "X display to manage (default: config display or $DISPLAY)")
	debug := fs.Bool("debug", false, "Log at debug level regardless of log_level")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fluxcore run [--path PATH] [--display DISPLAY] [--debug]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Take over the display as its window manager. SIGHUP reloads the config.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	if *display != "" {
		cfg.Display = *display
	}

	level := cfg.SlogLevel()
	if *debug {
		level = slog.LevelDebug
	}
	lv := InitLogger(level)
	if *debug {
		// Keep reloads from lowering the level again.
		lv = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = daemon.Run(ctx, daemon.Options{
		Config:     cfg,
		ConfigPath: *path,
		Logger:     slog.Default(),
		Level:      lv,
	})
	if err != nil {
		if errors.Is(err, x11.ErrOtherWM) {
			slog.Error("another window manager is already running")
		} else {
			slog.Error("window manager failed", "error", err)
		}
		return 1
	}
	return 0
}

func clientFlags(name, usage string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	display := fs.String("display", "", "Display of the window manager (default: $DISPLAY)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		fs.PrintDefaults()
	}
	return fs, display
}

func parseFlags(fs *flag.FlagSet, args []string, nargs int) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != nargs {
		if nargs == 0 {
			fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		} else {
			fmt.Fprintf(os.Stderr, "%s takes %d argument(s)\n", fs.Name(), nargs)
		}
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func runStatus(args []string) int {
	fs, display := clientFlags("status", "Usage: fluxcore status [--display DISPLAY]")
	if code, ok := parseFlags(fs, args, 0); !ok {
		return code
	}

	status, err := ipc.NewClient(*display).GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("pid:            %d\n", status.WindowManagerPID)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Printf("windows:        %d\n", status.WindowCount)
	fmt.Printf("workspace:      %d/%d (%s)\n", status.Workspace+1, status.WorkspaceCount, status.WorkspaceName)
	fmt.Printf("focused:        %s\n", status.Focused)
	if status.Feedback != "" {
		fmt.Printf("feedback:       %s\n", status.Feedback)
	}
	return 0
}

func runWindows(args []string) int {
	fs, display := clientFlags("windows", "Usage: fluxcore windows [--display DISPLAY] [--json]")
	asJSON := fs.Bool("json", false, "Print JSON")
	if code, ok := parseFlags(fs, args, 0); !ok {
		return code
	}

	windows, err := ipc.NewClient(*display).ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(windows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	titleWidth := 0
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil {
			// Room left after the fixed columns.
			titleWidth = max(width-64, 16)
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FRAME\tWS\tLAYER\tSTATE\tGEOMETRY\tFLAGS\tTITLE")
	for _, w := range windows {
		fmt.Fprintf(tw, "%#x\t%d\t%d\t%s\t%dx%d+%d+%d\t%s\t%s\n",
			w.Frame, w.Workspace, w.Layer, w.State, w.Width, w.Height, w.X, w.Y, windowFlags(w), truncate(w.Title, titleWidth))
	}
	tw.Flush()
	return 0
}

// truncate shortens s to at most width runes; width 0 means unlimited.
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func windowFlags(w ipc.WindowInfo) string {
	flags := ""
	add := func(set bool, c string) {
		if set {
			flags += c
		}
	}
	add(w.Focused, "F")
	add(w.Iconic, "I")
	add(w.Shaded, "S")
	add(w.Maximized, "M")
	add(w.Stuck, "*")
	if len(w.Clients) > 1 {
		flags += fmt.Sprintf("T%d", len(w.Clients))
	}
	if flags == "" {
		return "-"
	}
	return flags
}

func runReload(args []string) int {
	fs, display := clientFlags("reload", "Usage: fluxcore reload [--display DISPLAY]")
	if code, ok := parseFlags(fs, args, 0); !ok {
		return code
	}

	if err := ipc.NewClient(*display).Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reloaded")
	return 0
}

func runAction(args []string) int {
	fs, display := clientFlags("action", "Usage: fluxcore action [--display DISPLAY] <name>")
	if code, ok := parseFlags(fs, args, 1); !ok {
		return code
	}

	if err := ipc.NewClient(*display).Action(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runWorkspace(args []string) int {
	fs, display := clientFlags("workspace", "Usage: fluxcore workspace [--display DISPLAY] <n>")
	if code, ok := parseFlags(fs, args, 1); !ok {
		return code
	}

	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid workspace %q\n", fs.Arg(0))
		return 2
	}
	if err := ipc.NewClient(*display).SwitchWorkspace(n); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  fluxcore config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  fluxcore config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  fluxcore config explain [--path PATH] <yaml.path>")
		fmt.Fprintln(os.Stderr, "  fluxcore config actions")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/fluxcore/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/fluxcore/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		_ = printEffective // default
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			for _, f := range res.Files {
				fmt.Printf("# loaded: %s\n", f)
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/fluxcore/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	case "actions":
		for _, name := range config.Actions() {
			fmt.Println(name)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
