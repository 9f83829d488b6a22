package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbaliyan/layerkey/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// cliFlags holds raw flag values before they are merged with the settings
// file.
type cliFlags struct {
	configFile string
	settings   config.Settings
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{settings: config.Default()}

	cmd := &cobra.Command{
		Use:   "layerkey",
		Short: "Stateless secret generation via hierarchical Argon2id derivation",
		Long: `layerkey derives a mnemonic or a password from a master secret and an
ordered list of layers. Each layer salts one Argon2id stage, the final key
drives a ChaCha20 keystream, and output symbols are drawn from it by
rejection sampling. Nothing is stored: the same inputs always give the same
output.

The master secret is read at "In [0]:" without echo. Layers follow one per
line at "In [1]:", "In [2]:" and so on; an empty line ends the list.

Mnemonic mode draws from the built-in EFF large wordlist. A list on disk
can be used instead with --wordlist or the LAYERKEY_WORDLIST environment
variable.`,
		Version:       version,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd, s)
		},
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return WrapError(ExitUsage, "invalid flags", err)
	})
	registerFlags(cmd, f)
	return cmd
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return NewCLIError(ExitUsage, fmt.Sprintf("unexpected argument %q; secrets are read from standard input", args[0]))
	}
	return nil
}

func registerFlags(cmd *cobra.Command, f *cliFlags) {
	s := &f.settings
	fs := cmd.Flags()
	fs.StringVarP(&s.Mode, "mode", "m", s.Mode, "Output mode (mnemonic|password)")
	fs.StringVarP(&s.Security, "security", "s", s.Security, "Security preset for KDF parameters and output length (standard|paranoid)")
	fs.IntVar(&s.Words, "words", 0, "Override mnemonic word count")
	fs.IntVar(&s.Length, "length", 0, "Override password length")
	fs.Uint32Var(&s.KDFMemoryMiB, "kdf-memory", 0, "Override KDF memory cost in MiB")
	fs.Uint32Var(&s.KDFIterations, "kdf-iterations", 0, "Override KDF iterations")
	fs.Uint32Var(&s.KDFParallelism, "kdf-parallelism", 0, "Override KDF parallelism (lanes)")
	fs.StringVar(&s.Wordlist, "wordlist", "", "Path to a wordlist file in EFF dice-list format (default: $"+config.EnvWordlist+", else the built-in EFF large list)")
	fs.BoolVar(&s.CustomWordlist, "custom-wordlist", false, "Accept a wordlist that does not match the EFF large list checksum")
	fs.StringVar(&f.configFile, "config", "", "Path to a settings file")
	fs.BoolVar(&s.NoUnicode, "no-unicode", false, "Disable Unicode output")
	fs.BoolVar(&s.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVarP(&s.Quiet, "quiet", "q", false, "Suppress settings and statistics output")
	fs.BoolVarP(&s.Verbose, "verbose", "v", false, "Log derivation progress to standard error")
}

// resolveSettings loads the settings file, if any, and lets explicitly set
// flags override it.
func resolveSettings(cmd *cobra.Command, f *cliFlags) (config.Settings, error) {
	s := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(cmd.Context(), f.configFile)
		if err != nil {
			return s, WrapError(ExitUsage, "cannot load settings", err)
		}
		s = loaded
	}

	changed := cmd.Flags().Changed
	flag := f.settings
	if changed("mode") {
		s.Mode = flag.Mode
	}
	if changed("security") {
		s.Security = flag.Security
	}
	if changed("words") {
		s.Words = flag.Words
	}
	if changed("length") {
		s.Length = flag.Length
	}
	if changed("kdf-memory") {
		s.KDFMemoryMiB = flag.KDFMemoryMiB
	}
	if changed("kdf-iterations") {
		s.KDFIterations = flag.KDFIterations
	}
	if changed("kdf-parallelism") {
		s.KDFParallelism = flag.KDFParallelism
	}
	if changed("wordlist") {
		s.Wordlist = flag.Wordlist
	}
	if changed("custom-wordlist") {
		s.CustomWordlist = flag.CustomWordlist
	}
	if changed("no-unicode") {
		s.NoUnicode = flag.NoUnicode
	}
	if changed("no-color") {
		s.NoColor = flag.NoColor
	}
	if changed("quiet") {
		s.Quiet = flag.Quiet
	}
	if changed("verbose") {
		s.Verbose = flag.Verbose
	}

	if err := s.Validate(); err != nil {
		return s, WrapError(ExitUsage, "invalid settings", err)
	}
	return s, nil
}
