package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/b2files/clientcli"
)

var (
	listStart string
	listLimit int
	listAll   bool
)

var listCmd = &cobra.Command{
	Use:   "list [start-file-name]",
	Short: "List file names in a bucket",
	Long: `List file names in a bucket, in name order, starting at the given name.

Examples:
  b2-cli list
  b2-cli list --bucket 4a48fe8875c6214145260818 photos/
  b2-cli list --limit 10 --start "photos/2024"
  b2-cli list --all --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listStart, "start", "", "first file name to return")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 100, "max file names per page (service caps at 10000)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "fetch all pages")
}

func runList(cmd *cobra.Command, args []string) error {
	start := listStart
	if len(args) > 0 {
		start = args[0]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(cmd.Context(), clientcli.ListOptions{
		StartFileName: start,
		MaxFileCount:  listLimit,
		All:           listAll,
	})
	if err != nil {
		_ = getFormatter().FormatError(os.Stderr, err)
		return err
	}

	return getFormatter().FormatList(os.Stdout, result)
}
