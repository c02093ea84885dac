package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
)

// Ls lists entries in the lockbox without requiring a password
func Ls(ctx context.Context, env *Env) {
	box := env.OpenBox()
	defer box.Close()

	entries, err := box.List(ctx)
	if err != nil {
		HandleError(err)
	}

	if len(entries) == 0 {
		fmt.Println("No entries")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLENGTH\tMODIFIED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\n", e.Name, e.Length, e.Modified.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}
