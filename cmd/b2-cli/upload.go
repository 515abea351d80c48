package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/b2files/clientcli"
)

var (
	uploadRecursive   bool
	uploadContentType string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [file-name]",
	Short: "Upload files to a bucket",
	Long: `Upload a file, or a directory with --recursive, to a bucket.

The file name defaults to the cleaned local path. With --recursive the
second argument is a prefix and relative paths are preserved under it.
Each file gets its own upload URL.

Examples:
  b2-cli upload ./file.txt docs/file.txt
  b2-cli upload -r ./images/ media/images
  b2-cli upload --content-type application/json ./data config.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "content type (default: detected by the service)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	opts := clientcli.UploadOptions{
		LocalPath:   args[0],
		ContentType: uploadContentType,
		Recursive:   uploadRecursive,
	}
	if len(args) > 1 {
		opts.RemotePath = args[1]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		_ = getFormatter().FormatError(os.Stderr, err)
		return err
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return errors.New("one or more uploads failed")
	}

	return nil
}
