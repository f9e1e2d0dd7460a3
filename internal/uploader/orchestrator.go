// Package uploader drives the client side of a bill upload: request an
// upload credential, PUT the bytes straight to storage, then register the
// bill's metadata.
package uploader

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"billtrack/internal/dto"

	"go.uber.org/zap"
)

const (
	// MaxFileSize is the ceiling advertised to users. The server does not
	// enforce it.
	MaxFileSize = 10 << 20

	DefaultSuccessDelay = 1500 * time.Millisecond
)

const (
	MsgMissingFields    = "Please fill in all fields and select a file"
	MsgInvalidAmount    = "Amount must be a positive number"
	MsgFileTooLarge     = "File exceeds the 10MB limit"
	MsgBusy             = "Upload already in progress"
	MsgCredentialFailed = "Failed to get upload URL"
	MsgTransferFailed   = "Failed to upload file to storage"
	MsgRegisterFailed   = "Failed to save bill metadata"
	MsgSucceeded        = "Bill uploaded successfully!"
)

// API is the subset of the billtrack client the workflow needs.
type API interface {
	RequestUploadURL(ctx context.Context, fileName, fileType string) (*dto.UploadURLResponse, error)
	PutObject(ctx context.Context, url, contentType string, data []byte) error
	CreateBill(ctx context.Context, req *dto.CreateBillRequest) (*dto.CreateBillResponse, error)
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Form holds what the user entered. Amount is kept as typed.
type Form struct {
	Title  string
	Amount string
	Date   string
	File   *File
}

type Result struct {
	State   State
	Message string
	Key     string
	Bill    *dto.BillResponse
}

type Options struct {
	// PublicURL builds the informational object URL sent with the metadata.
	// Nil sends none.
	PublicURL func(key string) string
	// SuccessDelay is how long the success message is shown before the form
	// is reset and OnClose runs.
	SuccessDelay time.Duration
	// OnTransition observes every state change.
	OnTransition func(from, to State, message string)
	// OnClose is called once the success delay has elapsed.
	OnClose func()
}

type Orchestrator struct {
	api    API
	opts   Options
	logger *zap.Logger

	mu      sync.Mutex
	running sync.Mutex
	state   State
	message string
}

func New(api API, opts Options, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		api:    api,
		opts:   opts,
		logger: logger,
	}
}

// State returns the current phase and user-facing message.
func (o *Orchestrator) State() (State, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state, o.message
}

// Run executes one upload from Idle. It blocks until the run ends and, on
// success, until the display delay has passed. A failed run leaves any
// already transferred object in storage; callers start over with a new Run.
func (o *Orchestrator) Run(ctx context.Context, form Form) Result {
	if !o.running.TryLock() {
		st, _ := o.State()
		return Result{State: st, Message: MsgBusy}
	}
	defer o.running.Unlock()

	o.set(StateIdle, "")

	if msg := validate(form); msg != "" {
		o.advance(false, msg)
		return Result{State: StateIdle, Message: msg}
	}
	amount, _ := strconv.ParseFloat(strings.TrimSpace(form.Amount), 64)
	o.advance(true, "")

	cred, err := o.api.RequestUploadURL(ctx, form.File.Name, form.File.ContentType)
	if err != nil {
		return o.fail(MsgCredentialFailed, err)
	}
	o.advance(true, "")

	if err := o.api.PutObject(ctx, cred.URL, form.File.ContentType, form.File.Data); err != nil {
		return o.fail(MsgTransferFailed, err)
	}
	o.advance(true, "")

	req := &dto.CreateBillRequest{
		Title:  form.Title,
		Amount: amount,
		Date:   form.Date,
		S3Key:  cred.Key,
	}
	if o.opts.PublicURL != nil {
		req.S3URL = o.opts.PublicURL(cred.Key)
	}
	created, err := o.api.CreateBill(ctx, req)
	if err != nil {
		o.logger.Warn("Uploaded object has no bill record", zap.String("key", cred.Key))
		return o.fail(MsgRegisterFailed, err)
	}
	o.advance(true, MsgSucceeded)

	result := Result{State: StateSucceeded, Message: MsgSucceeded, Key: cred.Key, Bill: &created.Bill}

	if o.opts.SuccessDelay > 0 {
		timer := time.NewTimer(o.opts.SuccessDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	o.set(StateIdle, "")
	if o.opts.OnClose != nil {
		o.opts.OnClose()
	}

	return result
}

func (o *Orchestrator) fail(msg string, err error) Result {
	st, _ := o.State()
	o.logger.Error("Upload failed", zap.Stringer("phase", st), zap.Error(err))
	o.advance(false, msg)
	return Result{State: StateFailed, Message: msg}
}

func (o *Orchestrator) advance(ok bool, message string) {
	o.mu.Lock()
	from := o.state
	to := next(from, ok)
	o.state = to
	o.message = message
	o.mu.Unlock()

	if o.opts.OnTransition != nil && (from != to || message != "") {
		o.opts.OnTransition(from, to, message)
	}
}

func (o *Orchestrator) set(s State, message string) {
	o.mu.Lock()
	o.state = s
	o.message = message
	o.mu.Unlock()
}

func validate(form Form) string {
	if strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Amount) == "" ||
		strings.TrimSpace(form.Date) == "" || form.File == nil {
		return MsgMissingFields
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(form.Amount), 64)
	if err != nil || amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return MsgInvalidAmount
	}
	if len(form.File.Data) > MaxFileSize {
		return MsgFileTooLarge
	}
	return ""
}
