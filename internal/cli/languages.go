package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parseltongue-dev/parseltongue/internal/lang"
)

var checkGrammars bool

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their file extensions",
	RunE:  runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
	languagesCmd.Flags().BoolVar(&checkGrammars, "check", false, "Compile every grammar and report failures")
}

func runLanguages(cmd *cobra.Command, args []string) error {
	log := newLogger("error")
	registry := lang.NewRegistry(log)

	if checkGrammars {
		for _, info := range registry.Languages() {
			registry.ResolveLanguage(info.Language)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LANGUAGE\tEXTENSIONS\tSTATUS")
	for _, info := range registry.Languages() {
		status := "available"
		if checkGrammars {
			switch {
			case info.Err != nil:
				status = fmt.Sprintf("failed: %v", info.Err)
			case info.Compiled:
				status = "ok"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Language, strings.Join(info.Extensions, " "), status)
	}
	return w.Flush()
}
