package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	cliflag "github.com/tomasbasham/cli-runtime/flag"
	"github.com/tomasbasham/cli-runtime/iooption"
	"github.com/tomasbasham/cli-runtime/printer"
	"github.com/tomasbasham/cli-runtime/templates"

	"billtrack/internal/client"
)

var (
	rootLong = templates.LongDesc(`
		Upload bill documents to billtrack and list the bills it stores.

		Files are sent straight to object storage through a presigned URL;
		only the bill's metadata goes through the billtrack server.`)

	rootExamples = templates.Examples(`
		# Upload a PDF bill
		billctl upload invoice.pdf --title "Electricity" --amount 42.50 --date 2024-01-15

		# List bills against a remote server
		billctl list --server https://bills.example.com`)

	// Injected at build time using ldflags.
	version = ""
	commit  = ""
)

const defaultServer = "http://localhost:8080"

// BillctlOptions holds the flags shared by every subcommand.
type BillctlOptions struct {
	Server  string
	Timeout time.Duration

	iooption.IOStreams
}

func NewBillctlOptions(streams iooption.IOStreams) *BillctlOptions {
	return &BillctlOptions{
		IOStreams: streams,
	}
}

// Client returns an API client for the configured server.
func (o *BillctlOptions) Client() *client.Client {
	return client.New(o.Server, &http.Client{Timeout: o.Timeout})
}

// NewRootCommand creates the `billctl` command with default arguments.
func NewRootCommand() *cobra.Command {
	options := NewBillctlOptions(iooption.IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	})

	return NewRootCommandWithArgs(options)
}

// NewRootCommandWithArgs creates the `billctl` command and its nested
// children.
func NewRootCommandWithArgs(o *BillctlOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "billctl [command]",
		Version:               versionInfo(),
		DisableFlagsInUseLine: true,
		Short:                 "Bill upload and listing tool",
		Long:                  rootLong,
		Example:               rootExamples,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}

	server := defaultServer
	if env := os.Getenv("BILLTRACK_SERVER"); env != "" {
		server = env
	}

	pflags := cmd.PersistentFlags()
	pflags.StringVarP(&o.Server, "server", "s", server, "Base URL of the billtrack API")
	pflags.DurationVar(&o.Timeout, "timeout", 60*time.Second, "Timeout for each HTTP request")

	printerOpts := printer.WarningPrinterOptions{Color: true}
	warnings := printer.NewWarningPrinter(o.ErrOut, printerOpts)
	cmd.SetGlobalNormalizationFunc(cliflag.WarnWordSepNormalizeFunc(warnings))

	cmd.AddCommand(NewUploadCommand(NewUploadOptions(o)))
	cmd.AddCommand(NewListCommand(NewListOptions(o)))

	return cmd
}

func versionInfo() string {
	if version == "" {
		return ""
	}
	return fmt.Sprintf("%s (commit: %s)", version, commit)
}
