// Command conti browses and edits the record lists of the accounts web
// application: transactions, rules and budgets rendered as sortable tables.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	listName string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "conti",
	Short: "Filter, sort, page and edit rendered record lists",
	Long: `conti reads a rendered page of the accounts application (a local file or
an http(s) URL), binds its record list and lets you filter, sort, page and
delete records from the terminal.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&listName, "list", "l", "", "List definition to use (default: first configured)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
