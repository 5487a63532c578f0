package commands

import (
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/ankerfs/sftp"
)

var putCmd = &cobra.Command{
	Use:   "put <local> [remote]",
	Short: "Upload a local file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		local := args[0]
		remote := path.Base(local)
		if len(args) == 2 {
			remote = args[1]
		}

		src, err := os.Open(local)
		if err != nil {
			return err
		}
		defer src.Close()

		cl, teardown, err := connect()
		if err != nil {
			return err
		}
		defer teardown()

		flags := sftp.OpenFlagWriteOnly | sftp.OpenFlagCreate | sftp.OpenFlagTruncate

		return cl.WithFile(remote, flags, 0644, func(f *sftp.File) error {
			_, err := io.Copy(f, src)
			return err
		})
	},
}
