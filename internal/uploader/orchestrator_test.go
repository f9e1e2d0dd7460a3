package uploader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"billtrack/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu sync.Mutex

	credErr     error
	putErr      error
	createErr   error
	blockCred   chan struct{}
	calls       []string
	created     *dto.CreateBillRequest
	putData     []byte
	putType     string
	credRequest [2]string
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) RequestUploadURL(_ context.Context, fileName, fileType string) (*dto.UploadURLResponse, error) {
	f.record("credential")
	if f.blockCred != nil {
		<-f.blockCred
	}
	f.credRequest = [2]string{fileName, fileType}
	if f.credErr != nil {
		return nil, f.credErr
	}
	return &dto.UploadURLResponse{Key: "bills/123.pdf", URL: "https://storage.example/put"}, nil
}

func (f *fakeAPI) PutObject(_ context.Context, url, contentType string, data []byte) error {
	f.record("put")
	f.putData = data
	f.putType = contentType
	return f.putErr
}

func (f *fakeAPI) CreateBill(_ context.Context, req *dto.CreateBillRequest) (*dto.CreateBillResponse, error) {
	f.record("create")
	f.created = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &dto.CreateBillResponse{
		Message: "Bill saved successfully",
		Bill:    dto.BillResponse{ID: "1", Title: req.Title, Amount: 42.5, Date: req.Date, S3Key: req.S3Key},
	}, nil
}

type transition struct {
	from, to State
	msg      string
}

func validForm() Form {
	return Form{
		Title:  "Electricity Bill",
		Amount: "42.50",
		Date:   "2024-01-15",
		File:   &File{Name: "bill.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7")},
	}
}

func newRecorded(api API, opts Options) (*Orchestrator, *[]transition) {
	var (
		mu    sync.Mutex
		trans []transition
	)
	opts.OnTransition = func(from, to State, msg string) {
		mu.Lock()
		trans = append(trans, transition{from, to, msg})
		mu.Unlock()
	}
	return New(api, opts, zap.NewNop()), &trans
}

func TestOrchestrator_Success(t *testing.T) {
	api := &fakeAPI{}
	closed := 0
	o, trans := newRecorded(api, Options{
		PublicURL: func(key string) string { return "https://bills.s3.us-east-1.amazonaws.com/" + key },
		OnClose:   func() { closed++ },
	})

	res := o.Run(context.Background(), validForm())

	assert.Equal(t, StateSucceeded, res.State)
	assert.Equal(t, MsgSucceeded, res.Message)
	assert.Equal(t, "bills/123.pdf", res.Key)
	require.NotNil(t, res.Bill)
	assert.Equal(t, 1, closed)

	assert.Equal(t, []string{"credential", "put", "create"}, api.calls)
	assert.Equal(t, [2]string{"bill.pdf", "application/pdf"}, api.credRequest)
	assert.Equal(t, "application/pdf", api.putType)
	assert.Equal(t, []byte("%PDF-1.7"), api.putData)
	assert.Equal(t, 42.5, api.created.Amount)
	assert.Equal(t, "bills/123.pdf", api.created.S3Key)
	assert.Equal(t, "https://bills.s3.us-east-1.amazonaws.com/bills/123.pdf", api.created.S3URL)

	assert.Equal(t, []transition{
		{StateIdle, StateRequestingCredential, ""},
		{StateRequestingCredential, StateTransferringBytes, ""},
		{StateTransferringBytes, StateRegisteringMetadata, ""},
		{StateRegisteringMetadata, StateSucceeded, MsgSucceeded},
	}, *trans)

	st, msg := o.State()
	assert.Equal(t, StateIdle, st)
	assert.Empty(t, msg)
}

func TestOrchestrator_SuccessWaitsForDisplayDelay(t *testing.T) {
	api := &fakeAPI{}
	var closedAt time.Time
	o := New(api, Options{
		SuccessDelay: 30 * time.Millisecond,
		OnClose:      func() { closedAt = time.Now() },
	}, zap.NewNop())

	start := time.Now()
	res := o.Run(context.Background(), validForm())

	assert.Equal(t, StateSucceeded, res.State)
	assert.GreaterOrEqual(t, closedAt.Sub(start), 30*time.Millisecond)
}

func TestOrchestrator_GuardKeepsIdle(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Form)
		want   string
	}{
		{name: "NoTitle", mutate: func(f *Form) { f.Title = "" }, want: MsgMissingFields},
		{name: "NoAmount", mutate: func(f *Form) { f.Amount = " " }, want: MsgMissingFields},
		{name: "NoDate", mutate: func(f *Form) { f.Date = "" }, want: MsgMissingFields},
		{name: "NoFile", mutate: func(f *Form) { f.File = nil }, want: MsgMissingFields},
		{name: "NegativeAmount", mutate: func(f *Form) { f.Amount = "-1" }, want: MsgInvalidAmount},
		{name: "TextAmount", mutate: func(f *Form) { f.Amount = "lots" }, want: MsgInvalidAmount},
		{name: "NaNAmount", mutate: func(f *Form) { f.Amount = "NaN" }, want: MsgInvalidAmount},
		{name: "TooLarge", mutate: func(f *Form) { f.File.Data = make([]byte, MaxFileSize+1) }, want: MsgFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			o, trans := newRecorded(api, Options{})

			form := validForm()
			tt.mutate(&form)
			res := o.Run(context.Background(), form)

			assert.Equal(t, StateIdle, res.State)
			assert.Equal(t, tt.want, res.Message)
			assert.Empty(t, api.calls)
			assert.Equal(t, []transition{{StateIdle, StateIdle, tt.want}}, *trans)
		})
	}
}

func TestOrchestrator_PhaseFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		api       *fakeAPI
		wantMsg   string
		wantCalls []string
		failedIn  State
	}{
		{
			name:      "Credential",
			api:       &fakeAPI{credErr: boom},
			wantMsg:   MsgCredentialFailed,
			wantCalls: []string{"credential"},
			failedIn:  StateRequestingCredential,
		},
		{
			name:      "Transfer",
			api:       &fakeAPI{putErr: boom},
			wantMsg:   MsgTransferFailed,
			wantCalls: []string{"credential", "put"},
			failedIn:  StateTransferringBytes,
		},
		{
			name:      "Register",
			api:       &fakeAPI{createErr: boom},
			wantMsg:   MsgRegisterFailed,
			wantCalls: []string{"credential", "put", "create"},
			failedIn:  StateRegisteringMetadata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closed := false
			o, trans := newRecorded(tt.api, Options{OnClose: func() { closed = true }})

			res := o.Run(context.Background(), validForm())

			assert.Equal(t, StateFailed, res.State)
			assert.Equal(t, tt.wantMsg, res.Message)
			// each phase runs at most once: no retry
			assert.Equal(t, tt.wantCalls, tt.api.calls)
			assert.False(t, closed)

			last := (*trans)[len(*trans)-1]
			assert.Equal(t, transition{tt.failedIn, StateFailed, tt.wantMsg}, last)

			st, msg := o.State()
			assert.Equal(t, StateFailed, st)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestOrchestrator_RerunAfterFailureStartsFromIdle(t *testing.T) {
	api := &fakeAPI{putErr: errors.New("expired")}
	o, trans := newRecorded(api, Options{})

	res := o.Run(context.Background(), validForm())
	require.Equal(t, StateFailed, res.State)

	api.putErr = nil
	*trans = nil
	res = o.Run(context.Background(), validForm())
	require.Equal(t, StateSucceeded, res.State)

	assert.Equal(t, StateIdle, (*trans)[0].from)
	assert.Equal(t, []string{"credential", "put", "credential", "put", "create"}, api.calls)
}

func TestOrchestrator_RejectsConcurrentRun(t *testing.T) {
	api := &fakeAPI{blockCred: make(chan struct{})}
	o := New(api, Options{}, zap.NewNop())

	done := make(chan Result)
	go func() { done <- o.Run(context.Background(), validForm()) }()

	require.Eventually(t, func() bool {
		st, _ := o.State()
		return st == StateRequestingCredential
	}, time.Second, time.Millisecond)

	res := o.Run(context.Background(), validForm())
	assert.Equal(t, MsgBusy, res.Message)
	assert.Equal(t, StateRequestingCredential, res.State)

	close(api.blockCred)
	assert.Equal(t, StateSucceeded, (<-done).State)
}

func TestNext(t *testing.T) {
	assert.Equal(t, StateRequestingCredential, next(StateIdle, true))
	assert.Equal(t, StateIdle, next(StateIdle, false))
	assert.Equal(t, StateTransferringBytes, next(StateRequestingCredential, true))
	assert.Equal(t, StateFailed, next(StateRequestingCredential, false))
	assert.Equal(t, StateRegisteringMetadata, next(StateTransferringBytes, true))
	assert.Equal(t, StateFailed, next(StateTransferringBytes, false))
	assert.Equal(t, StateSucceeded, next(StateRegisteringMetadata, true))
	assert.Equal(t, StateFailed, next(StateRegisteringMetadata, false))
	assert.Equal(t, StateSucceeded, next(StateSucceeded, false))
	assert.Equal(t, StateFailed, next(StateFailed, true))
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateTransferringBytes.Terminal())
	assert.Equal(t, "transferring-bytes", StateTransferringBytes.String())
}
