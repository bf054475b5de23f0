package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"pdf-tools-server/internal/domain"
	apperrors "pdf-tools-server/pkg/errors"
)

const (
	outcomeSuccess = "success"

	// transformationFailedMessage is deliberately generic: the capability
	// cannot tell a wrong password apart from other failures.
	transformationFailedMessage = "Could not process the PDF. If the file is password protected, check the password and try again."
)

// Pipeline runs operations through per-invocation scratch workspaces.
type Pipeline struct {
	workspaces *WorkspaceManager
	operations map[string]*domain.Operation
	order      []*domain.Operation
	observer   Observer
	logger     domain.Logger
}

// NewPipeline creates a pipeline serving the given operations.
func NewPipeline(workspaces *WorkspaceManager, observer Observer, logger domain.Logger, operations ...*domain.Operation) *Pipeline {
	if observer == nil {
		observer = NopObserver{}
	}
	p := &Pipeline{
		workspaces: workspaces,
		operations: make(map[string]*domain.Operation, len(operations)),
		observer:   observer,
		logger:     logger,
	}
	for _, op := range operations {
		if op == nil || op.Name == "" {
			continue
		}
		if _, exists := p.operations[op.Name]; exists {
			continue
		}
		p.operations[op.Name] = op
		p.order = append(p.order, op)
	}
	return p
}

// Operations returns the registered operations in registration order.
func (p *Pipeline) Operations() []*domain.Operation {
	out := make([]*domain.Operation, len(p.order))
	copy(out, p.order)
	return out
}

// Process looks up the named operation and runs it.
func (p *Pipeline) Process(ctx context.Context, operation string, upload *domain.Upload, params domain.Params) (*domain.Result, error) {
	op, ok := p.operations[operation]
	if !ok {
		notFound := apperrors.NewNotFoundError("Unknown operation: " + operation)
		notFound.Cause = fmt.Errorf("%w: %q", domain.ErrOperationNotFound, operation)
		return nil, notFound
	}
	return p.Run(ctx, op, upload, params)
}

// Run executes one invocation: validate, acquire a workspace, stage the
// input, transform, read the output and release the workspace. The workspace
// is released on every path, including panics raised by the capability.
func (p *Pipeline) Run(ctx context.Context, op *domain.Operation, upload *domain.Upload, params domain.Params) (result *domain.Result, err error) {
	start := time.Now()
	defer func() {
		p.observer.RecordOperation(op.Name, time.Since(start), outcomeOf(err))
	}()

	if vErr := validateRequest(op, upload, params); vErr != nil {
		p.logger.Debug("Rejected request", "operation", op.Name, "code", vErr.Code)
		return nil, vErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, apperrors.NewUnexpectedError("Request cancelled", ctxErr)
	}

	ws, acqErr := p.workspaces.Acquire(op.Name)
	if acqErr != nil {
		p.logger.Error("Failed to acquire scratch workspace", acqErr, "operation", op.Name)
		return nil, apperrors.NewUnexpectedError("Failed to prepare the file for processing", acqErr)
	}
	defer func() {
		relErr := p.workspaces.Release(ws)
		if relErr == nil {
			return
		}
		cleanupErr := apperrors.NewCleanupError(ws.Dir, relErr)
		p.logger.Error("Scratch workspace cleanup failed", relErr, "operation", op.Name, "dir", ws.Dir)
		if result != nil {
			result.CleanupErr = cleanupErr
		}
	}()

	data, err := p.execute(ctx, op, ws, upload, params)
	if err != nil {
		p.logger.Warn("Operation failed", "operation", op.Name, "error", err)
		return nil, err
	}

	p.logger.Info("Operation completed", "operation", op.Name, "input_bytes", len(upload.Data), "output_bytes", len(data), "duration_ms", time.Since(start).Milliseconds())
	return &domain.Result{
		Data:        data,
		Filename:    OutputFilename(op.OutputPrefix, upload.Filename),
		ContentType: domain.ContentTypePDF,
	}, nil
}

func (p *Pipeline) execute(ctx context.Context, op *domain.Operation, ws *Workspace, upload *domain.Upload, params domain.Params) ([]byte, error) {
	if err := ws.WriteInput(upload.Data); err != nil {
		return nil, apperrors.NewUnexpectedError("Failed to stage the uploaded file", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewUnexpectedError("Request cancelled", err)
	}

	if err := invoke(ctx, op.Transformer, ws, params); err != nil {
		return nil, apperrors.NewTransformationError(transformationFailedMessage, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewUnexpectedError("Request cancelled", err)
	}

	data, err := ws.ReadOutput()
	if err != nil {
		return nil, apperrors.NewTransformationError(transformationFailedMessage, err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewTransformationError(transformationFailedMessage, domain.ErrEmptyOutput)
	}
	return data, nil
}

// invoke calls the capability and turns a panic into an ordinary error.
func invoke(ctx context.Context, t domain.Transformer, ws *Workspace, params domain.Params) (err error) {
	if t == nil {
		return fmt.Errorf("operation has no capability")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("capability panicked: %v", r)
		}
	}()
	return t.Transform(ctx, ws.InputPath, ws.OutputPath, params)
}

func validateRequest(op *domain.Operation, upload *domain.Upload, params domain.Params) *apperrors.AppError {
	if upload.Empty() {
		return apperrors.NewMissingUploadError()
	}
	for _, name := range op.RequiredParams {
		if !params.Has(name) {
			return apperrors.NewMissingParameterError(name)
		}
	}
	if op.Validate != nil {
		if vErr := op.Validate(params); vErr != nil {
			return apperrors.NewInvalidParameterError(vErr.Field, vErr.Message)
		}
	}
	return nil
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	if appErr, ok := apperrors.As(err); ok && appErr.Code != "" {
		return string(appErr.Code)
	}
	return string(apperrors.CodeUnexpectedFailure)
}

// OutputFilename derives the download name for a result, e.g.
// "unlocked-report.pdf" for prefix "unlocked" and "report.pdf".
func OutputFilename(prefix, original string) string {
	name := strings.TrimSpace(filepath.Base(strings.ReplaceAll(original, "\\", "/")))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' || r == '/' {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "document.pdf"
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	if prefix == "" {
		return name
	}
	return prefix + "-" + name
}
