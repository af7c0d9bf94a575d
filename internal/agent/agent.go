package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/qmuntal/stateless" // FSM library

	"github.com/comigor/becas-go/internal/document"
	"github.com/comigor/becas-go/internal/grounding"
	"github.com/comigor/becas-go/internal/history"
	"github.com/comigor/becas-go/internal/logger"
)

// TurnState is a state of the per-turn FSM.
type TurnState string

const (
	StateIdle          TurnState = "Idle"
	StateUserSubmitted TurnState = "UserSubmitted"
	StateExtracting    TurnState = "Extracting"
	StateExtracted     TurnState = "Extracted"
	StateExtractFailed TurnState = "ExtractFailed"
	StateComposing     TurnState = "Composing"
	StateGenerating    TurnState = "Generating"
	StateAppended      TurnState = "Appended"      // terminal success, returns to Idle
	StateAppendedError TurnState = "AppendedError" // terminal failure, returns to Idle
)

// TurnTrigger moves the per-turn FSM.
type TurnTrigger string

const (
	TriggerSubmit           TurnTrigger = "Submit"
	TriggerExtract          TurnTrigger = "Extract"
	TriggerExtractSucceeded TurnTrigger = "ExtractSucceeded"
	TriggerExtractFailed    TurnTrigger = "ExtractFailed"
	TriggerAbort            TurnTrigger = "Abort"
	TriggerCompose          TurnTrigger = "Compose"
	TriggerGenerate         TurnTrigger = "Generate"
	TriggerGenerated        TurnTrigger = "Generated"
	TriggerGenerationFailed TurnTrigger = "GenerationFailed"
	TriggerFinish           TurnTrigger = "Finish"
)

// ErrEmptyQuestion is returned by Process for blank input.
var ErrEmptyQuestion = errors.New("empty question")

// Extractor turns an uploaded file into text.
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte) (string, error)
}

// Responder answers a composed payload.
type Responder interface {
	Generate(ctx context.Context, payload string) (string, error)
}

// Turn describes one processed user submission.
type Turn struct {
	Question string
	// Payload is what the responder received; empty when it was not called.
	Payload string
	Reply   string
	// Err is the extraction or generation failure behind a failed turn.
	Err    error
	States []TurnState
}

// Failed reports whether the reply is an error message.
func (t Turn) Failed() bool { return t.Err != nil }

// AttachmentInfo summarises the attached document.
type AttachmentInfo struct {
	Name      string
	Chars     int
	Truncated bool
	Err       error
}

type attachment struct {
	upload document.Upload
	text   string
	err    error
	done   bool
}

// Agent is the session pipeline: it owns the conversation store and the
// current attachment, and runs one FSM per submitted question.
type Agent struct {
	store      history.Store
	extractor  Extractor
	responder  Responder
	now        func() time.Time
	attachment *attachment
}

// Option configures an Agent.
type Option func(*Agent)

// WithClock sets the clock used to stamp appended messages.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// New creates a new agent.
func New(store history.Store, extractor Extractor, responder Responder, opts ...Option) *Agent {
	a := &Agent{
		store:     store,
		extractor: extractor,
		responder: responder,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Attach replaces the current attachment and extracts it right away. The
// result is cached: turns reuse it until another upload or Detach. A failed
// extraction stays attached, so later turns report it instead of answering.
func (a *Agent) Attach(ctx context.Context, upload document.Upload) (AttachmentInfo, error) {
	a.attachment = &attachment{upload: upload}
	a.extract(ctx)
	info := a.describeAttachment()
	if info.Err != nil {
		logger.L.Warn("attachment rejected", "name", upload.Name, "error", info.Err)
		return info, info.Err
	}
	logger.L.Info("attachment loaded", "name", upload.Name, "chars", info.Chars, "truncated", info.Truncated)
	return info, nil
}

// Detach drops the current attachment.
func (a *Agent) Detach() {
	a.attachment = nil
}

// Attachment reports the current attachment, if any.
func (a *Agent) Attachment() (AttachmentInfo, bool) {
	if a.attachment == nil {
		return AttachmentInfo{}, false
	}
	return a.describeAttachment(), true
}

func (a *Agent) describeAttachment() AttachmentInfo {
	return AttachmentInfo{
		Name:      a.attachment.upload.Name,
		Chars:     utf8.RuneCountInString(a.attachment.text),
		Truncated: grounding.IsTruncated(a.attachment.text),
		Err:       a.attachment.err,
	}
}

func (a *Agent) extract(ctx context.Context) {
	att := a.attachment
	if att.done {
		return
	}
	att.text, att.err = a.extractor.Extract(ctx, att.upload.Name, att.upload.Data)
	att.done = true
}

// Messages returns the conversation, oldest first.
func (a *Agent) Messages(ctx context.Context) ([]history.Message, error) {
	return a.store.All(ctx)
}

// Clear resets the conversation to the greeting. The attachment is kept.
func (a *Agent) Clear(ctx context.Context) error {
	return a.store.Reset(ctx)
}

// Process runs one turn for question: it appends the user message, grounds
// the question in the attachment if there is one, asks the responder, and
// appends the reply. Extraction and generation failures are recorded as the
// assistant reply and reported in Turn.Err; only store failures are returned.
func (a *Agent) Process(ctx context.Context, question string) (Turn, error) {
	if strings.TrimSpace(question) == "" {
		return Turn{}, ErrEmptyQuestion
	}

	turn := Turn{Question: question, States: []TurnState{StateIdle}}
	var doc *grounding.Attachment

	fsm := stateless.NewStateMachine(StateIdle)
	fsm.OnTransitioning(func(_ context.Context, t stateless.Transition) {
		turn.States = append(turn.States, t.Destination.(TurnState))
		logger.L.Debug("turn transition", "from", t.Source, "to", t.Destination, "trigger", t.Trigger)
	})

	fsm.Configure(StateIdle).
		Permit(TriggerSubmit, StateUserSubmitted)

	// State: UserSubmitted
	// Action: record the question, then branch on the attachment.
	fsm.Configure(StateUserSubmitted).
		OnEntry(func(ctx context.Context, _ ...any) error {
			if err := a.store.Append(ctx, history.User(question, a.now())); err != nil {
				return err
			}
			if a.attachment != nil {
				return fsm.FireCtx(ctx, TriggerExtract)
			}
			return fsm.FireCtx(ctx, TriggerCompose)
		}).
		Permit(TriggerExtract, StateExtracting).
		Permit(TriggerCompose, StateComposing)

	fsm.Configure(StateExtracting).
		OnEntry(func(ctx context.Context, _ ...any) error {
			a.extract(ctx)
			if a.attachment.err != nil {
				turn.Err = a.attachment.err
				return fsm.FireCtx(ctx, TriggerExtractFailed)
			}
			doc = &grounding.Attachment{Name: a.attachment.upload.Name, Text: a.attachment.text}
			return fsm.FireCtx(ctx, TriggerExtractSucceeded)
		}).
		Permit(TriggerExtractSucceeded, StateExtracted).
		Permit(TriggerExtractFailed, StateExtractFailed)

	fsm.Configure(StateExtracted).
		OnEntry(func(ctx context.Context, _ ...any) error {
			return fsm.FireCtx(ctx, TriggerCompose)
		}).
		Permit(TriggerCompose, StateComposing)

	// State: ExtractFailed
	// Action: abort the turn; the responder is not called.
	fsm.Configure(StateExtractFailed).
		OnEntry(func(ctx context.Context, _ ...any) error {
			turn.Reply = DescribeExtractionError(turn.Err)
			return fsm.FireCtx(ctx, TriggerAbort)
		}).
		Permit(TriggerAbort, StateAppendedError)

	fsm.Configure(StateComposing).
		OnEntry(func(ctx context.Context, _ ...any) error {
			turn.Payload = grounding.Compose(question, doc)
			return fsm.FireCtx(ctx, TriggerGenerate)
		}).
		Permit(TriggerGenerate, StateGenerating)

	fsm.Configure(StateGenerating).
		OnEntry(func(ctx context.Context, _ ...any) error {
			reply, err := a.responder.Generate(ctx, turn.Payload)
			if err != nil {
				turn.Err = err
				turn.Reply = DescribeGenerationError(err)
				return fsm.FireCtx(ctx, TriggerGenerationFailed)
			}
			turn.Reply = reply
			return fsm.FireCtx(ctx, TriggerGenerated)
		}).
		Permit(TriggerGenerated, StateAppended).
		Permit(TriggerGenerationFailed, StateAppendedError)

	appendReply := func(ctx context.Context, _ ...any) error {
		if err := a.store.Append(ctx, history.Assistant(turn.Reply, a.now())); err != nil {
			return err
		}
		return fsm.FireCtx(ctx, TriggerFinish)
	}
	fsm.Configure(StateAppended).
		OnEntry(appendReply).
		Permit(TriggerFinish, StateIdle)
	fsm.Configure(StateAppendedError).
		OnEntry(appendReply).
		Permit(TriggerFinish, StateIdle)

	if err := fsm.FireCtx(ctx, TriggerSubmit); err != nil {
		logger.L.Error("turn aborted by store failure", "error", err)
		return turn, fmt.Errorf("process turn: %w", err)
	}

	if turn.Err != nil {
		logger.L.Warn("turn failed", "error", turn.Err)
	} else {
		logger.L.Info("turn answered", "grounded", doc != nil, "payload_chars", utf8.RuneCountInString(turn.Payload))
	}
	return turn, nil
}

// DescribeExtractionError is the user-facing message for a failed upload.
func DescribeExtractionError(err error) string {
	var unsupported *document.UnsupportedFormatError
	if errors.As(err, &unsupported) {
		return fmt.Sprintf("❌ Formato no soportado: .%s. Usa PDF, TXT, DOCX o PPTX.", unsupported.Ext)
	}
	var parse *document.ParseError
	if errors.As(err, &parse) {
		return fmt.Sprintf("❌ Error al procesar el archivo: %v", parse.Err)
	}
	return fmt.Sprintf("❌ Error al procesar el archivo: %v", err)
}

// DescribeGenerationError is the assistant reply recorded when the model
// call fails.
func DescribeGenerationError(err error) string {
	return fmt.Sprintf("❌ Error: %v", err)
}
