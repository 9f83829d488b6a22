package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rbaliyan/layerkey"
	"github.com/rbaliyan/layerkey/internal/config"
	"github.com/rbaliyan/layerkey/internal/input"
	"github.com/rbaliyan/layerkey/internal/report"
	"github.com/rbaliyan/layerkey/wordlist"
)

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadWordlist returns the word table for mnemonic mode and its display
// name. Without a path the built-in EFF large list is used.
func loadWordlist(s config.Settings) (*layerkey.StaticWordList, string, error) {
	path := s.WordlistPath()
	if path == "" {
		list, err := wordlist.EFFLarge()
		if err != nil {
			return nil, "", WrapError(ExitError, "built-in wordlist", err)
		}
		return list, wordlist.EFFLargeName, nil
	}
	var opts []wordlist.Option
	name := wordlist.EFFLargeName
	if s.CustomWordlist {
		opts = append(opts, wordlist.WithoutChecksum())
		name = "Custom"
	}
	list, err := wordlist.LoadFile(path, opts...)
	if err != nil {
		return nil, "", WrapError(ExitUsage, "cannot load wordlist", err)
	}
	return list, name, nil
}

func run(cmd *cobra.Command, s config.Settings) error {
	ctx := cmd.Context()
	logger := newLogger(cmd.ErrOrStderr(), s.Verbose)

	params, err := s.Params()
	if err != nil {
		return err
	}

	var (
		words    *layerkey.StaticWordList
		listName string
		symbols  = len(layerkey.Alphabet)
	)
	mnemonic := s.Mode == config.ModeMnemonic
	if mnemonic {
		words, listName, err = loadWordlist(s)
		if err != nil {
			return err
		}
		symbols = words.WordCount()
		logger.Debug("wordlist loaded", "name", listName, "words", symbols)
	}

	out := cmd.OutOrStdout()
	printer := report.NewPrinter(out, report.Options{
		Unicode: !s.NoUnicode && report.DetectUnicode(),
		Color:   !s.NoColor && report.DetectColor(out),
		Quiet:   s.Quiet,
	})

	collected, err := input.NewPrompter(cmd.InOrStdin(), out, cmd.ErrOrStderr()).Collect()
	if err != nil {
		return err
	}
	defer collected.Wipe()

	deriver, err := layerkey.NewDeriver(params, layerkey.WithLogger(logger))
	if err != nil {
		return err
	}
	var source layerkey.WordSource
	if words != nil {
		source = words
	}
	gen, err := layerkey.NewGenerator(source, layerkey.WithLogger(logger))
	if err != nil {
		return err
	}

	count := s.Count()
	var secret *layerkey.Secret
	elapsed, err := printer.Progress("Deriving key...", func() error {
		key, err := deriver.Derive(ctx, collected.Master, collected.Layers)
		if err != nil {
			return err
		}
		defer key.Destroy()
		if mnemonic {
			secret, err = gen.Words(ctx, key, count)
		} else {
			secret, err = gen.Chars(ctx, key, count)
		}
		return err
	})
	if err != nil {
		return err
	}
	defer secret.Destroy()
	logger.Debug("secret generated", "mode", s.Mode, "count", count, "elapsed", elapsed)

	printer.Print(secret.Bytes(), report.Describe(collected.Master, collected.Layers), report.Output{
		Mnemonic: mnemonic,
		Count:    count,
		Symbols:  symbols,
		Wordlist: listName,
		Elapsed:  elapsed,
		Params:   params,
	})
	return nil
}
