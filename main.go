package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/securelock/cmd"
	"github.com/illarion/securelock/internal/config"
	"github.com/illarion/securelock/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "lock":
		runLock(ctx, os.Args[2:])
	case "unlock":
		runUnlock(ctx, os.Args[2:])
	case "init":
		runInit(ctx, os.Args[2:])
	case "put":
		runPut(ctx, os.Args[2:])
	case "get":
		runGet(ctx, os.Args[2:])
	case "rm":
		runRm(ctx, os.Args[2:])
	case "ls":
		runLs(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "passwd":
		runPasswd(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// commonFlags are accepted by every command that touches secrets
type commonFlags struct {
	verbose    *bool
	configPath *string
	store      *string
	iterations *int
}

func newFlagSet(name string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs, &commonFlags{
		verbose:    fs.Bool("v", false, "Verbose logging"),
		configPath: fs.String("config", "", "Config file (default $"+config.EnvConfig+" or user config dir)"),
		store:      fs.String("store", "", "Lockbox file (default .securelock)"),
		iterations: fs.Int("i", 0, "PBKDF2 iterations for newly locked values"),
	}
}

func parse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// env loads config, applies flag overrides and builds the logger
func (f *commonFlags) env() *cmd.Env {
	cfg, err := config.Load(*f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if *f.store != "" {
		cfg.Store = *f.store
	}
	if *f.iterations != 0 {
		cfg.Iterations = *f.iterations
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, *f.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return &cmd.Env{Config: cfg, Logger: logger}
}

func runLock(ctx context.Context, args []string) {
	fs, common := newFlagSet("lock")
	file := fs.String("f", "", "Read text from file")
	out := fs.String("o", "", "Write locked value to file")
	parse(fs, args)

	env := common.env()
	defer env.Logger.Sync()

	cmd.Lock(ctx, env, fs.Args(), *file, *out)
}

func runUnlock(ctx context.Context, args []string) {
	fs, common := newFlagSet("unlock")
	file := fs.String("f", "", "Read locked value from file")
	out := fs.String("o", "", "Write text to file")
	parse(fs, args)

	env := common.env()
	defer env.Logger.Sync()

	cmd.Unlock(ctx, env, fs.Args(), *file, *out)
}

func runInit(_ context.Context, args []string) {
	fs, common := newFlagSet("init")
	parse(fs, args)

	env := common.env()
	defer env.Logger.Sync()

	cmd.Init(env)
}

func runPut(ctx context.Context, args []string) {
	fs, common := newFlagSet("put")
	file := fs.String("f", "", "Read text from file")
	parse(fs, args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: securelock put [-f file] <name> [text...]")
		os.Exit(1)
	}

	env := common.env()
	defer env.Logger.Sync()

	cmd.Put(ctx, env, fs.Arg(0), fs.Args()[1:], *file)
}

func runGet(ctx context.Context, args []string) {
	fs, common := newFlagSet("get")
	out := fs.String("o", "", "Write text to file")
	parse(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: securelock get [-o file] <name>")
		os.Exit(1)
	}

	env := common.env()
	defer env.Logger.Sync()

	cmd.Get(ctx, env, fs.Arg(0), *out)
}

func runRm(ctx context.Context, args []string) {
	fs, common := newFlagSet("rm")
	parse(fs, args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: securelock rm <name> [name...]")
		os.Exit(1)
	}

	env := common.env()
	defer env.Logger.Sync()

	cmd.Rm(ctx, env, fs.Args())
}

func runLs(ctx context.Context, args []string) {
	fs, common := newFlagSet("ls")
	parse(fs, args)

	env := common.env()
	defer env.Logger.Sync()

	cmd.Ls(ctx, env)
}

func runStatus(ctx context.Context, args []string) {
	fs, common := newFlagSet("status")
	parse(fs, args)

	env := common.env()
	defer env.Logger.Sync()

	cmd.Status(ctx, env)
}

func runPasswd(ctx context.Context, args []string) {
	fs, common := newFlagSet("passwd")
	parse(fs, args)

	env := common.env()
	defer env.Logger.Sync()

	cmd.Passwd(ctx, env)
}

func runDiff(ctx context.Context, args []string) {
	fs, common := newFlagSet("diff")
	parse(fs, args)

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: securelock diff <name> <file>")
		os.Exit(1)
	}

	env := common.env()
	defer env.Logger.Sync()

	cmd.Diff(ctx, env, fs.Arg(0), fs.Arg(1))
}

func runCompact(_ context.Context, args []string) {
	fs, common := newFlagSet("compact")
	parse(fs, args)

	env := common.env()
	defer env.Logger.Sync()

	cmd.Compact(env)
}

func runKeyring(_ context.Context, args []string) {
	fs, common := newFlagSet("keyring")
	parse(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: securelock keyring <save|delete|status>")
		os.Exit(1)
	}

	env := common.env()
	defer env.Logger.Sync()

	switch fs.Arg(0) {
	case "save":
		cmd.KeyringSave(env)
	case "delete":
		cmd.KeyringDelete(env)
	case "status":
		cmd.KeyringStatus(env)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", fs.Arg(0))
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: securelock completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("securelock - Password-based text locking")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  securelock <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  lock        Lock text into a printable locked value")
	fmt.Println("  unlock      Recover text from a locked value")
	fmt.Println("  init        Create a .securelock lockbox in current directory")
	fmt.Println("  put         Lock text into the lockbox under a name")
	fmt.Println("  get         Unlock a named entry from the lockbox")
	fmt.Println("  rm          Remove entries from the lockbox")
	fmt.Println("  ls          List lockbox entries")
	fmt.Println("  status      Show lockbox status")
	fmt.Println("  passwd      Change lockbox password")
	fmt.Println("  diff        Compare an entry with a local file")
	fmt.Println("  compact     Compact lockbox to reclaim disk space")
	fmt.Println("  keyring     Manage password in OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  securelock lock 'db password'        # Print a locked value")
	fmt.Println("  securelock unlock -f token.txt       # Unlock a value stored in a file")
	fmt.Println("  securelock put api-key -f key.txt    # Store a file in the lockbox")
	fmt.Println("  securelock get api-key               # Print a stored entry")
	fmt.Println()
	fmt.Println("Use 'securelock help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "lock":
		fmt.Println("securelock lock [-f file] [-o file] [-i iterations] [text...]")
		fmt.Println()
		fmt.Println("Locks ASCII text with a password and prints a printable locked value.")
		fmt.Println("Text comes from the arguments, from -f, or from stdin.")
		fmt.Println("The same text, password and iterations always give the same value.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -f file         Read text from file")
		fmt.Println("  -o file         Write the locked value to file")
		fmt.Println("  -i iterations   PBKDF2 iterations (default 4096)")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  securelock lock 'hello world'")
		fmt.Println("  echo -n secret | SECURELOCK_PASSWORD=pw securelock lock")
	case "unlock":
		fmt.Println("securelock unlock [-f file] [-o file] [locked]")
		fmt.Println()
		fmt.Println("Recovers the text of a locked value.")
		fmt.Println("Surrounding whitespace in the input is ignored.")
		fmt.Println("A wrong password and a damaged value give the same error.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -f file   Read the locked value from file")
		fmt.Println("  -o file   Write the text to file")
	case "init":
		fmt.Println("securelock init [-i iterations]")
		fmt.Println()
		fmt.Println("Creates a .securelock lockbox in the current directory.")
		fmt.Println("The password is not stored anywhere - you must remember it.")
	case "put":
		fmt.Println("securelock put [-f file] <name> [text...]")
		fmt.Println()
		fmt.Println("Locks text and stores it in the lockbox under name.")
		fmt.Println("An existing entry with the same name is replaced.")
	case "get":
		fmt.Println("securelock get [-o file] <name>")
		fmt.Println()
		fmt.Println("Unlocks the entry stored under name.")
	case "rm":
		fmt.Println("securelock rm <name> [name...]")
		fmt.Println()
		fmt.Println("Removes entries from the lockbox.")
		fmt.Println("Supports glob patterns for multiple entries.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  securelock rm api-key")
		fmt.Println("  securelock rm \"prod/*\"")
	case "ls":
		fmt.Println("securelock ls")
		fmt.Println()
		fmt.Println("Lists entries with their text length. Does not require a password.")
	case "status":
		fmt.Println("securelock status")
		fmt.Println()
		fmt.Println("Shows lockbox size, iterations, entries, keyring and git state.")
		fmt.Println("Does not require a password.")
	case "passwd":
		fmt.Println("securelock passwd")
		fmt.Println()
		fmt.Println("Changes the lockbox password.")
		fmt.Println("Re-locks every entry with the new password in one transaction.")
	case "diff":
		fmt.Println("securelock diff <name> <file>")
		fmt.Println()
		fmt.Println("Shows a unified diff between a stored entry and a local file.")
	case "compact":
		fmt.Println("securelock compact")
		fmt.Println()
		fmt.Println("Compacts the .securelock database to reclaim unused disk space.")
		fmt.Println("Does not require a password.")
	case "keyring":
		fmt.Println("securelock keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Manages the lockbox password in the OS keyring.")
		fmt.Println("Set SECURELOCK_KEYRING=false to skip keyring lookups.")
	case "completion":
		fmt.Println("securelock completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(securelock completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(securelock completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  securelock completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
