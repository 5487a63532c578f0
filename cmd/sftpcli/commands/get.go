package commands

import (
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/ankerfs/sftp"
)

var getCmd = &cobra.Command{
	Use:   "get <remote> [local]",
	Short: "Download a remote file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote := args[0]
		local := path.Base(remote)
		if len(args) == 2 {
			local = args[1]
		}

		cl, teardown, err := connect()
		if err != nil {
			return err
		}
		defer teardown()

		dst, err := os.Create(local)
		if err != nil {
			return err
		}
		defer dst.Close()

		return cl.WithFile(remote, sftp.OpenFlagReadOnly, 0, func(f *sftp.File) error {
			_, err := io.Copy(dst, f)
			return err
		})
	},
}
