package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/dblog/internal/dblog"
	"github.com/roach88/dblog/internal/logging"
)

// OptionDBLogFile is the lightningd option naming the database file.
const OptionDBLogFile = "dblog-file"

// HookDBWrite is the hook lightningd calls before committing each transaction.
const HookDBWrite = "db_write"

var errShutdown = errors.New("shutdown requested")

// Host serves a dblog.Plugin over a lightningd plugin Stream.
type Host struct {
	stream       *Stream
	core         *dblog.Plugin
	log          logging.Logger
	fallbackFile string
	rejected     int
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the host's logger. Default: no-op.
func WithLogger(l logging.Logger) HostOption {
	return func(h *Host) {
		h.log = l
	}
}

// WithFallbackFile sets the database file used when init carries no
// dblog-file option. It is also advertised as the option default.
func WithFallbackFile(path string) HostOption {
	return func(h *Host) {
		h.fallbackFile = path
	}
}

// NewHost creates a host for core reading and writing on stream.
func NewHost(stream *Stream, core *dblog.Plugin, opts ...HostOption) *Host {
	h := &Host{
		stream: stream,
		core:   core,
		log:    logging.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Rejected returns how many db_write calls were refused as malformed.
func (h *Host) Rejected() int {
	return h.rejected
}

type readResult struct {
	req *Request
	err error
}

// Serve handles requests until lightningd closes the pipe, asks for
// shutdown, or ctx is cancelled.
//
// A failed init is fatal: the error response is sent and Serve returns the
// error. Failed or malformed writes are answered with an error and serving
// continues.
func (h *Host) Serve(ctx context.Context) error {
	requests := make(chan readResult)
	// The reader may stay blocked on stdin after ctx is cancelled; it exits
	// when the pipe closes with the process.
	go h.readLoop(ctx, requests)

	for {
		select {
		case <-ctx.Done():
			h.log.Info("plugin stopping: context cancelled")
			return ctx.Err()

		case rr := <-requests:
			if rr.err != nil {
				var typeErr *json.UnmarshalTypeError
				if errors.As(rr.err, &typeErr) {
					h.log.Warn("malformed request", logging.Err(rr.err))
					if err := h.stream.ReplyError(nil, &RPCError{Code: CodeInvalidRequest, Message: rr.err.Error()}); err != nil {
						return err
					}
					continue
				}
				if errors.Is(rr.err, io.EOF) {
					h.log.Info("plugin stopping: input closed")
					return nil
				}
				return fmt.Errorf("read request: %w", rr.err)
			}

			if err := h.handle(ctx, rr.req); err != nil {
				if errors.Is(err, errShutdown) {
					h.log.Info("plugin stopping: shutdown")
					return nil
				}
				return err
			}
		}
	}
}

func (h *Host) readLoop(ctx context.Context, out chan<- readResult) {
	for {
		req, err := h.stream.Read()
		select {
		case out <- readResult{req: req, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				return
			}
		}
	}
}

// handle processes one request. Only fatal errors are returned.
func (h *Host) handle(ctx context.Context, req *Request) error {
	switch req.Method {
	case "getmanifest":
		return h.reply(req, h.manifest())

	case "init":
		return h.handleInit(ctx, req)

	case HookDBWrite:
		return h.handleDBWrite(ctx, req)

	case "shutdown":
		return errShutdown

	default:
		if req.IsNotification() {
			h.log.Debug("ignoring notification", logging.String("method", req.Method))
			return nil
		}
		return h.replyError(req, &RPCError{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("unknown method %q", req.Method),
		})
	}
}

func (h *Host) reply(req *Request, result interface{}) error {
	if req.IsNotification() {
		return nil
	}
	return h.stream.Reply(req.ID, result)
}

func (h *Host) replyError(req *Request, rpcErr *RPCError) error {
	if req.IsNotification() {
		return nil
	}
	return h.stream.ReplyError(req.ID, rpcErr)
}

type manifestOption struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Default     interface{} `json:"default,omitempty"`
	Description string      `json:"description"`
}

type manifestHook struct {
	Name string `json:"name"`
}

// Manifest is the getmanifest result.
type Manifest struct {
	Options       []manifestOption `json:"options"`
	RPCMethods    []interface{}    `json:"rpcmethods"`
	Hooks         []manifestHook   `json:"hooks"`
	Subscriptions []string         `json:"subscriptions"`
	Dynamic       bool             `json:"dynamic"`
}

func (h *Host) manifest() Manifest {
	opt := manifestOption{
		Name:        OptionDBLogFile,
		Type:        "string",
		Description: "The db file to create.",
	}
	if h.fallbackFile != "" {
		opt.Default = h.fallbackFile
	}
	return Manifest{
		Options:       []manifestOption{opt},
		RPCMethods:    []interface{}{},
		Hooks:         []manifestHook{{Name: HookDBWrite}},
		Subscriptions: []string{"shutdown"},
		// db_write must be registered before lightningd opens its database.
		Dynamic: false,
	}
}

type initParams struct {
	Options       map[string]json.RawMessage `json:"options"`
	Configuration struct {
		LightningDir string `json:"lightning-dir"`
		RPCFile      string `json:"rpc-file"`
	} `json:"configuration"`
}

func (h *Host) handleInit(ctx context.Context, req *Request) error {
	locator, err := h.initLocator(req.Params)
	if err == nil {
		err = h.core.OnStoreReady(ctx, locator)
	}
	if err != nil {
		h.log.Error("init failed", logging.Err(err))
		if replyErr := h.replyError(req, toRPCError(err)); replyErr != nil {
			return replyErr
		}
		return fmt.Errorf("init: %w", err)
	}
	return h.reply(req, map[string]interface{}{})
}

// initLocator extracts the dblog-file option, falling back to the
// configured file when lightningd passes none.
func (h *Host) initLocator(raw json.RawMessage) (string, error) {
	var params initParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return "", dblog.NewConfigurationError("malformed init params", err)
		}
	}
	if params.Configuration.LightningDir != "" {
		h.log.Debug("init", logging.String("lightning_dir", params.Configuration.LightningDir))
	}

	value, ok := params.Options[OptionDBLogFile]
	if !ok || string(value) == "null" {
		return h.fallbackFile, nil
	}
	var locator string
	if err := json.Unmarshal(value, &locator); err != nil {
		return "", dblog.NewConfigurationError(OptionDBLogFile+" must be a string", err)
	}
	if locator == "" {
		return h.fallbackFile, nil
	}
	return locator, nil
}

type dbWriteParams struct {
	Writes      json.RawMessage `json:"writes"`
	DataVersion *uint64         `json:"data_version,omitempty"`
}

func (h *Host) handleDBWrite(ctx context.Context, req *Request) error {
	batch, dataVersion, err := decodeDBWrite(req.Params)
	if err != nil {
		h.rejected++
		h.log.Warn("rejecting db_write", logging.Err(err))
		return h.replyError(req, toRPCError(err))
	}

	fields := []logging.Field{logging.Int("count", len(batch))}
	if dataVersion != nil {
		fields = append(fields, logging.Any("data_version", *dataVersion))
	}
	h.log.Debug("db_write", fields...)

	ok, err := h.core.OnWriteBatch(ctx, batch)
	if err != nil {
		return h.replyError(req, toRPCError(err))
	}
	return h.reply(req, ok)
}

// decodeDBWrite validates the hook payload. Anything other than an object
// with a writes array of strings is a protocol misuse.
func decodeDBWrite(raw json.RawMessage) (dblog.Batch, *uint64, error) {
	if len(raw) == 0 {
		return nil, nil, dblog.NewProtocolError("db_write without params")
	}
	var params dbWriteParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, nil, dblog.NewProtocolError("db_write params must be an object")
	}
	if len(params.Writes) == 0 || string(params.Writes) == "null" {
		return nil, nil, dblog.NewProtocolError("db_write without writes")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(params.Writes, &items); err != nil {
		return nil, nil, dblog.NewProtocolError("writes must be an array")
	}

	batch := make(dblog.Batch, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &batch[i]); err != nil || string(item) == "null" {
			return nil, nil, dblog.NewProtocolError(fmt.Sprintf("writes[%d] is not a string", i))
		}
	}
	return batch, params.DataVersion, nil
}

// toRPCError maps dblog errors onto JSON-RPC codes.
func toRPCError(err error) *RPCError {
	data := map[string]interface{}{}
	code := CodeInternalError

	var e *dblog.Error
	if errors.As(err, &e) {
		data["kind"] = string(e.Code)
		switch e.Code {
		case dblog.ErrCodeConfiguration, dblog.ErrCodeProtocolMisuse:
			code = CodeInvalidParams
		case dblog.ErrCodeStoreExecution:
			data["phase"] = string(e.Phase)
			data["index"] = e.Index
			data["command"] = e.Command
		}
	}
	return &RPCError{Code: code, Message: err.Error(), Data: data}
}
