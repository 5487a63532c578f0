package commands

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a remote directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, teardown, err := connect()
		if err != nil {
			return err
		}
		defer teardown()

		return cl.Mkdir(args[0], 0755)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Remove a remote file or empty directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, teardown, err := connect()
		if err != nil {
			return err
		}
		defer teardown()

		fi, err := cl.Lstat(args[0])
		if err != nil {
			return err
		}

		if fi.Mode()&fs.ModeDir != 0 {
			return cl.RemoveDirectory(args[0])
		}

		return cl.Remove(args[0])
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <old> <new>",
	Short: "Rename a remote file or directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, teardown, err := connect()
		if err != nil {
			return err
		}
		defer teardown()

		return cl.Rename(args[0], args[1])
	},
}

var realpathCmd = &cobra.Command{
	Use:   "realpath <path>",
	Short: "Canonicalize a remote path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, teardown, err := connect()
		if err != nil {
			return err
		}
		defer teardown()

		p, err := cl.RealPath(args[0])
		if err != nil {
			return err
		}

		fmt.Println(p)
		return nil
	},
}
