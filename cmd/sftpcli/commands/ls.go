package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ankerfs/sftp"
)

var lsLong bool

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a remote directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}

		cl, teardown, err := connect()
		if err != nil {
			return err
		}
		defer teardown()

		path, err = cl.RealPath(path)
		if err != nil {
			return err
		}

		if !lsLong {
			return cl.WithDir(path, func(d *sftp.Dir) error {
				for {
					batch, err := d.ReadBatch()
					if err == io.EOF {
						return nil
					}
					if err != nil {
						return err
					}

					for _, ent := range batch {
						fmt.Println(ent.Filename)
					}
				}
			})
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetBorder(false)
		table.SetColumnSeparator("")
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetHeader([]string{"Mode", "Size", "Modified", "Name"})

		err = cl.WithDir(path, func(d *sftp.Dir) error {
			for {
				batch, err := d.ReadBatch()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}

				for _, ent := range batch {
					table.Append([]string{
						ent.Stat.FileMode().String(),
						fmt.Sprint(ent.Stat.Size),
						ent.Stat.ModTime().Format("Jan _2 15:04"),
						ent.Filename,
					})
				}
			}
		})
		if err != nil {
			return err
		}

		table.Render()
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "long listing")
}
