package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	longKeys   bool
	deleteKeys bool
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys [prefix]",
		Short: "List, or delete, the stored spectra paths",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runKeysCmd,
	}
	cmd.Flags().BoolVarP(&longKeys, "long", "l", false, "show the run id and update time")
	cmd.Flags().BoolVar(&deleteKeys, "delete", false, "delete the listed entries")
	return cmd
}

func runKeysCmd(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}
	if deleteKeys && prefix == "" {
		return fmt.Errorf("refusing to delete every entry, give a prefix")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	keys, err := st.Keys(ctx, prefix)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, key := range keys {
		switch {
		case deleteKeys:
			if _, err := st.Delete(ctx, key); err != nil {
				return err
			}
			fmt.Fprintf(tw, "deleted\t%s\n", key)
		case longKeys:
			e, err := st.Get(ctx, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", key, e.RunID, e.UpdatedAt.Local().Format(time.DateTime))
		default:
			fmt.Fprintln(tw, key)
		}
	}
	return tw.Flush()
}
