package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bytedance/sonic"

	"github.com/marketplace/storefront/internal/core/domain"
)

func printPublications(w io.Writer, items []domain.Publication) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No publications.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tCITY\tSTATUS")
	for _, p := range items {
		status := "active"
		if p.IsPaused {
			status = "paused"
		}
		if p.IsPremium {
			status += ", premium"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Price.StringFixed(2), p.City, status)
	}
	_ = tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
