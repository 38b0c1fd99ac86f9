package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glaemscribe/glaemgo"
	"github.com/glaemscribe/glaemgo/runtime/mode"
)

// Exit code constants
const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitIOError          = 2
	ExitModeError        = 3
	ExitTranscribeError  = 4
)

type cliFlags struct {
	modePath    string
	charsetName string
	charsetDirs []string
	options     []string
	inputFile   string
	debug       bool
}

func main() {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:           "glaemgo",
		Short:         "Transcribe natural-language text into glyph writing systems",
		Version:       glaemgo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.modePath, "mode", "", "Path to the .glaem mode file")
	rootCmd.PersistentFlags().StringSliceVar(&flags.charsetDirs, "charset-dir", nil, "Extra directories searched for .cst files")
	rootCmd.PersistentFlags().StringArrayVar(&flags.options, "option", nil, "Transcription option override (name=value, repeatable)")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	transcribeCmd := &cobra.Command{
		Use:   "transcribe [text...]",
		Short: "Transcribe text with a mode, printing the result on stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(flags, args)
		},
	}
	transcribeCmd.Flags().StringVar(&flags.charsetName, "charset", "", "Charset name (default: the mode's default charset)")
	transcribeCmd.Flags().StringVar(&flags.inputFile, "file", "", "Read input text from a file instead of arguments")

	debugTreeCmd := &cobra.Command{
		Use:   "debug-tree",
		Short: "Dump the compiled transcription trie as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDebugTree(flags)
		},
	}

	rootCmd.AddCommand(transcribeCmd, debugTreeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// cliError carries an exit code alongside the message
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }

func exitCodeFor(err error) int {
	if ce, ok := err.(*cliError); ok {
		return ce.code
	}
	return ExitInvalidArguments
}

func loadFinalizedMode(flags *cliFlags) (*mode.Mode, error) {
	if flags.modePath == "" {
		return nil, &cliError{ExitInvalidArguments, fmt.Errorf("--mode is required")}
	}
	if flags.debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	m, err := glaemgo.LoadMode(flags.modePath, flags.charsetDirs...)
	if err != nil {
		return nil, &cliError{ExitIOError, err}
	}

	overrides := map[string]string{}
	for _, opt := range flags.options {
		name, value, ok := strings.Cut(opt, "=")
		if !ok {
			return nil, &cliError{ExitInvalidArguments,
				fmt.Errorf("bad --option '%s', want name=value", opt)}
		}
		overrides[name] = value
	}

	if err := m.Finalize(overrides); err != nil {
		return nil, &cliError{ExitModeError,
			fmt.Errorf("mode '%s' failed to compile:\n%s", m.Name, err.Error())}
	}
	return m, nil
}

func runTranscribe(flags *cliFlags, args []string) error {
	m, err := loadFinalizedMode(flags)
	if err != nil {
		return err
	}

	var text string
	switch {
	case flags.inputFile != "":
		content, err := os.ReadFile(flags.inputFile)
		if err != nil {
			return &cliError{ExitIOError, err}
		}
		text = string(content)
	case len(args) > 0:
		text = strings.Join(args, " ")
	default:
		return &cliError{ExitInvalidArguments, fmt.Errorf("no input text; pass arguments or --file")}
	}

	result, err := m.Transcribe(text, mode.TranscribeOptions{Charset: flags.charsetName})
	if err != nil {
		return &cliError{ExitTranscribeError, err}
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}
	fmt.Println(result.Output)
	return nil
}

func runDebugTree(flags *cliFlags) error {
	m, err := loadFinalizedMode(flags)
	if err != nil {
		return err
	}
	tree, err := m.DebugTree()
	if err != nil {
		return &cliError{ExitModeError, err}
	}
	encoded, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return &cliError{ExitTranscribeError, err}
	}
	fmt.Println(string(encoded))
	return nil
}
