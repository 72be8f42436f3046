// internal/chat/service.go
package chat

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"askai-service/internal/chat/assembler"
	"askai-service/internal/chat/reconciler"
	"askai-service/internal/common/azureai"
	"askai-service/internal/common/config"
	"askai-service/internal/common/errors"
	"askai-service/internal/common/logger"
	"askai-service/internal/common/metrics"
	"askai-service/internal/common/observability"
	"askai-service/internal/common/prompt"
	"askai-service/internal/models"
)

// Answers below this confidence are replaced with a canned fallback.
const confidenceThreshold = 0.5

const (
	missingMessageError = "Missing 'message' in request body"
	lowConfidenceAnswer = "I'm not confident in the answer. Please refine or rephrase your question for better results."
)

func greetingAnswer(documentTitle string) string {
	return fmt.Sprintf("Hello! How can I assist you with the %s or related questions today?", documentTitle)
}

func noInformationAnswer(supportContact string) string {
	return fmt.Sprintf("No relevant information was found. Please contact %s for further assistance.", supportContact)
}

// Service implements the ask flow: validate, short-circuit where possible,
// call the completion service, then reconcile citations into the answer.
type Service struct {
	cfg        *config.Config
	client     *azureai.Client
	prompts    *prompt.Loader
	reconciler *reconciler.Reconciler
	obs        *observability.Observability
	logger     logger.Logger
}

func NewService(
	cfg *config.Config,
	client *azureai.Client,
	prompts *prompt.Loader,
	rec *reconciler.Reconciler,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Service{
		cfg:        cfg,
		client:     client,
		prompts:    prompts,
		reconciler: rec,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "chat"}),
	}
}

// Ask answers one question. The returned history always echoes the sanitized
// input history plus the new user and assistant turns, whichever path
// produced the answer.
func (s *Service) Ask(ctx context.Context, req *models.AskRequest) (*models.AskResponse, *errors.ServiceError) {
	ctx, span := s.obs.StartSpan(ctx, "chat.ask")
	defer span.End()

	start := time.Now()
	outcome := "invalid_input"
	defer func() {
		s.obs.RecordAsk(ctx, outcome)
		s.obs.RecordAskDuration(ctx, time.Since(start), outcome)
	}()

	if req.Message == "" {
		return nil, errors.NewInvalidInputError(missingMessageError)
	}

	// Re-checked on every request so the error payload names exactly what is
	// missing, even when the service was started with a partial environment.
	if missing := s.cfg.MissingUpstreamSettings(); len(missing) > 0 {
		outcome = "configuration_error"
		s.logger.Error("upstream settings missing", map[string]interface{}{
			"missing": missing,
		})
		return nil, errors.NewConfigurationError(missing)
	}

	sanitized := assembler.SanitizeHistory(req.History)

	if assembler.IsGreeting(req.Message) {
		outcome = "greeting"
		metrics.ShortCircuits.WithLabelValues("greeting").Inc()
		return s.cannedResponse(sanitized, req.Message, greetingAnswer(s.cfg.Document.Title)), nil
	}

	_, assembleSpan := s.obs.StartSpan(ctx, "chat.assemble")
	messages := assembler.Assemble(s.prompts.Load(), sanitized, req.Message)
	assembleSpan.End()

	completionCtx, completionSpan := s.obs.StartSpan(ctx, "chat.complete")
	completion, err := s.client.Complete(completionCtx, messages)
	completionSpan.End()
	if err != nil {
		outcome = "upstream_error"
		return nil, s.mapCompletionError(err)
	}

	if completion.Confidence < confidenceThreshold {
		outcome = "low_confidence"
		metrics.ShortCircuits.WithLabelValues("low_confidence").Inc()
		s.logger.Info("answer below confidence threshold", map[string]interface{}{
			"confidence": completion.Confidence,
		})
		return s.cannedResponse(sanitized, req.Message, lowConfidenceAnswer), nil
	}

	if len(completion.Citations) == 0 {
		outcome = "no_citations"
		metrics.ShortCircuits.WithLabelValues("no_citations").Inc()
		return s.cannedResponse(sanitized, req.Message, noInformationAnswer(s.cfg.Document.SupportContact)), nil
	}

	_, reconcileSpan := s.obs.StartSpan(ctx, "chat.reconcile")
	answer, references := s.reconciler.Reconcile(completion.Content, completion.Citations)
	reconcileSpan.End()

	outcome = "answered"
	return &models.AskResponse{
		Answer:     answer,
		History:    assembler.EchoHistory(sanitized, req.Message, answer),
		References: references,
	}, nil
}

// cannedResponse wraps a fixed answer in the standard response shape. The
// references array stays present but empty.
func (s *Service) cannedResponse(history []models.ChatMessage, userMessage, answer string) *models.AskResponse {
	return &models.AskResponse{
		Answer:     answer,
		History:    assembler.EchoHistory(history, userMessage, answer),
		References: []models.Reference{},
	}
}

func (s *Service) mapCompletionError(err error) *errors.ServiceError {
	var apiErr *azureai.APIError
	if stderrors.As(err, &apiErr) {
		return errors.NewUpstreamFailureError(apiErr.StatusCode, apiErr.Body)
	}
	if stderrors.Is(err, azureai.ErrMalformedResponse) {
		return errors.NewInternalError(err.Error(), "")
	}
	return errors.NewUpstreamUnreachableError(err)
}
