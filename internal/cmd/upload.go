package cmd

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/templates"

	"billtrack/internal/uploader"
	"billtrack/pkg/config"
	"billtrack/pkg/logger"
)

type UploadOptions struct {
	*BillctlOptions

	file *uploader.File

	Path          string
	Title         string
	Amount        string
	Date          string
	ContentType   string
	PublicURLBase string
	CloseDelay    time.Duration
}

var (
	uploadLong = templates.LongDesc(`
		Upload a bill document and register its metadata.

		The upload runs in three steps: request an upload URL, send the file
		to storage, then save the bill. A failed step stops the upload and
		nothing is retried. Files must be images or PDFs of at most 10MB.`)

	uploadExample = templates.Examples(`
		# Upload a scanned receipt
		billctl upload receipt.png --title "Groceries" --amount 18.20 --date 2024-02-03

		# Record an explicit public URL base for the stored object
		billctl upload bill.pdf -t Water -a 30 -d 2024-03-01 --public-url-base https://cdn.example.com`)
)

func NewUploadOptions(root *BillctlOptions) *UploadOptions {
	return &UploadOptions{
		BillctlOptions: root,
	}
}

func NewUploadCommand(o *UploadOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "upload FILE",
		DisableFlagsInUseLine: true,
		Short:                 "Upload a bill document with its metadata",
		Long:                  uploadLong,
		Example:               uploadExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			if err := o.Run(cmd.Context()); err != nil {
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.Title, "title", "t", "", "Bill title (at most 100 characters)")
	flags.StringVarP(&o.Amount, "amount", "a", "", "Bill amount, e.g. 42.50")
	flags.StringVarP(&o.Date, "date", "d", "", "Bill date as YYYY-MM-DD")
	flags.StringVar(&o.ContentType, "content-type", "", "MIME type of the file (default: detected)")
	flags.StringVar(&o.PublicURLBase, "public-url-base", "", "Base of the public object URL (default: derived from S3_BUCKET_NAME and AWS_REGION)")
	flags.DurationVar(&o.CloseDelay, "close-delay", uploader.DefaultSuccessDelay, "How long the success message is shown before exiting")

	return cmd
}

func (o *UploadOptions) Complete(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("FILE is required")
	}
	o.Path = args[0]

	if o.PublicURLBase == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		o.PublicURLBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Storage.Bucket, cfg.Storage.Region)
	}
	return nil
}

// Validate reads the file. Field checks are left to the upload workflow so
// the CLI reports the same messages as any other client.
func (o *UploadOptions) Validate() error {
	data, err := os.ReadFile(o.Path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	contentType := o.ContentType
	if contentType == "" {
		contentType = detectContentType(o.Path, data)
	}

	o.file = &uploader.File{
		Name:        filepath.Base(o.Path),
		ContentType: contentType,
		Data:        data,
	}
	return nil
}

func (o *UploadOptions) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	base := strings.TrimRight(o.PublicURLBase, "/")
	orchestrator := uploader.New(o.Client(), uploader.Options{
		PublicURL:    func(key string) string { return base + "/" + key },
		SuccessDelay: o.CloseDelay,
		OnTransition: func(_, to uploader.State, _ string) {
			if !to.Terminal() && to != uploader.StateIdle {
				fmt.Fprintf(o.ErrOut, "%s...\n", to)
			}
		},
	}, logger.Get())

	result := orchestrator.Run(ctx, uploader.Form{
		Title:  o.Title,
		Amount: o.Amount,
		Date:   o.Date,
		File:   o.file,
	})
	if result.State != uploader.StateSucceeded {
		return fmt.Errorf("%s", result.Message)
	}

	fmt.Fprintln(o.Out, result.Message)
	fmt.Fprintf(o.Out, "id: %s\nkey: %s\n", result.Bill.ID, result.Key)
	return nil
}

// detectContentType prefers the file extension and falls back to sniffing
// the content.
func detectContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
			return mediaType
		}
		return ct
	}
	ct := http.DetectContentType(data)
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		return mediaType
	}
	return ct
}
