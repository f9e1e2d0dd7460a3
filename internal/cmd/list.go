package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/templates"

	"billtrack/internal/listing"
)

type ListOptions struct {
	*BillctlOptions

	Filter string
}

var (
	listLong = templates.LongDesc(`
		List stored bills, newest first, with a download link for each.

		Download links are signed on every request and expire after an hour.`)

	listExample = templates.Examples(`
		# List all bills
		billctl list

		# Only bills whose title mentions "electric"
		billctl list --filter electric`)
)

func NewListOptions(root *BillctlOptions) *ListOptions {
	return &ListOptions{
		BillctlOptions: root,
	}
}

func NewListCommand(o *ListOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "list",
		Aliases:               []string{"ls"},
		DisableFlagsInUseLine: true,
		Short:                 "List stored bills",
		Long:                  listLong,
		Example:               listExample,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&o.Filter, "filter", "f", "", "Only show bills whose title contains this text")

	return cmd
}

func (o *ListOptions) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := listing.NewView(o.Client()).Render(ctx, o.Out, o.Filter); err != nil {
		return fmt.Errorf("failed to fetch bills: %w", err)
	}
	return nil
}
