// Package chat turns one user message into one assistant reply, keeping the
// session history in a session.Store.
package chat

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
	apperrors "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/errors"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/llm"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/metrics"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/session"
)

// MissingFieldsMessage is the validation error text returned to clients.
const MissingFieldsMessage = "Missing sessionId or message"

// Options holds the generation parameters. They are fixed for the lifetime
// of an Orchestrator.
type Options struct {
	ModelID         string
	Gateway         string
	MaxOutputTokens int
	Temperature     float64
	// Timeout bounds each generation call. Zero means no bound beyond ctx.
	Timeout time.Duration
	// HistoryWindow limits how many recent turns enter the prompt. Zero keeps all.
	HistoryWindow int
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ModelID:         cfg.LLM.Model,
		Gateway:         cfg.LLM.Gateway,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         cfg.LLM.Timeout,
		HistoryWindow:   cfg.Chat.HistoryWindow,
	}
}

// Reply is the outcome of a successful chat turn.
type Reply struct {
	Text    string
	ModelID string
	// HistorySaved is false when the assistant turn could not be stored.
	HistorySaved bool
}

// Orchestrator runs the chat pipeline. Requests on the same session are
// serialized from the user append through the assistant append; requests
// on different sessions run independently.
type Orchestrator struct {
	store     session.Store
	generator llm.Generator
	opts      Options
	locks     *session.KeyLock
	log       logr.Logger
	metrics   *metrics.Metrics
}

// NewOrchestrator creates an Orchestrator. m may be nil.
func NewOrchestrator(store session.Store, generator llm.Generator, opts Options, log logr.Logger, m *metrics.Metrics) *Orchestrator {
	if opts.ModelID == "" {
		opts.ModelID = config.DefaultModelID
	}
	return &Orchestrator{
		store:     store,
		generator: generator,
		opts:      opts,
		locks:     session.NewKeyLock(),
		log:       log.WithName("chat"),
		metrics:   m,
	}
}

// ModelID returns the model every request is sent to.
func (o *Orchestrator) ModelID() string { return o.opts.ModelID }

// HandleChat appends the user message, generates a reply from the full
// history and appends the reply. Failure to store the reply does not fail
// the call; it is logged and reported through Reply.HistorySaved.
func (o *Orchestrator) HandleChat(ctx context.Context, sessionID, message string) (*Reply, error) {
	log := o.logger(ctx).WithValues("sessionID", sessionID)

	if sessionID == "" || message == "" {
		o.metrics.ObserveChat(metrics.OutcomeInvalid)
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, MissingFieldsMessage, nil)
	}

	unlock, err := o.locks.Lock(ctx, sessionID)
	if err != nil {
		o.metrics.ObserveChat(metrics.OutcomeStorageError)
		return nil, apperrors.New(apperrors.ErrCodeStorageUnavailable, "request cancelled while waiting for session", err)
	}
	defer unlock()

	err = o.store.Append(ctx, sessionID, session.Turn{Role: session.RoleUser, Content: message})
	o.metrics.ObserveStore("append", err)
	if err != nil {
		o.metrics.ObserveChat(metrics.OutcomeStorageError)
		log.Error(err, "Failed to store user turn")
		return nil, storageError("failed to store user message", err)
	}

	history, err := o.store.History(ctx, sessionID)
	o.metrics.ObserveStore("read", err)
	if err != nil {
		o.metrics.ObserveChat(metrics.OutcomeStorageError)
		log.Error(err, "Failed to read history")
		return nil, storageError("failed to read session history", err)
	}

	req := llm.Request{
		Messages:        BuildPrompt(history, o.opts.HistoryWindow),
		MaxOutputTokens: o.opts.MaxOutputTokens,
		Temperature:     o.opts.Temperature,
	}
	log.V(1).Info("Generating reply", "model", o.opts.ModelID, "promptMessages", len(req.Messages))

	raw, err := o.generate(ctx, req)
	if err != nil {
		o.metrics.ObserveChat(metrics.OutcomeGenerationError)
		log.Error(err, "Generation failed", "model", o.opts.ModelID)
		return nil, apperrors.New(apperrors.ErrCodeGenerationFailed, "model generation failed", err)
	}

	result := llm.Parse(raw)
	text := result.Reply()
	if result.Kind == llm.KindUnknown {
		o.metrics.ObserveFallback()
		log.Info("Model response had no usable text, using fallback reply",
			"model", o.opts.ModelID, "code", apperrors.ErrCodeResponseParseFailed)
	}

	reply := &Reply{Text: text, ModelID: o.opts.ModelID, HistorySaved: true}

	// The caller may already be gone; the reply still belongs in history.
	saveCtx := context.WithoutCancel(ctx)
	err = o.store.Append(saveCtx, sessionID, session.Turn{Role: session.RoleAssistant, Content: text})
	o.metrics.ObserveStore("append", err)
	if err != nil {
		reply.HistorySaved = false
		o.metrics.ObservePersistFailure()
		log.Error(err, "Failed to store assistant turn; returning reply anyway")
	}

	o.metrics.ObserveChat(metrics.OutcomeOK)
	log.V(1).Info("Chat handled", "resultKind", result.Kind.String(), "historySaved", reply.HistorySaved)
	return reply, nil
}

func (o *Orchestrator) generate(ctx context.Context, req llm.Request) (any, error) {
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := o.generator.Run(ctx, o.opts.ModelID, req, llm.Options{Gateway: o.opts.Gateway})
	o.metrics.ObserveGeneration(time.Since(start).Seconds())
	if err == nil && ctx.Err() != nil {
		// Providers that ignore ctx must not outlive the deadline.
		err = ctx.Err()
	}
	return raw, err
}

// History returns the stored turns for a session.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]session.Turn, error) {
	if sessionID == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "missing sessionId", nil)
	}
	turns, err := o.store.History(ctx, sessionID)
	o.metrics.ObserveStore("read", err)
	if err != nil {
		return nil, storageError("failed to read session history", err)
	}
	return turns, nil
}

// Reset clears a session's history, ordered after any in-flight chat on it.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "missing sessionId", nil)
	}
	unlock, err := o.locks.Lock(ctx, sessionID)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeStorageUnavailable, "request cancelled while waiting for session", err)
	}
	defer unlock()

	err = o.store.Clear(ctx, sessionID)
	o.metrics.ObserveStore("clear", err)
	if err != nil {
		return storageError("failed to clear session history", err)
	}
	return nil
}

func (o *Orchestrator) logger(ctx context.Context) logr.Logger {
	if l, err := logr.FromContext(ctx); err == nil {
		return l.WithName("chat")
	}
	return o.log
}

// storageError keeps coded store errors and wraps anything else as STORAGE_UNAVAILABLE.
func storageError(msg string, err error) error {
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return apperrors.New(apperrors.ErrCodeStorageUnavailable, msg, err)
}
