// Package advisor polishes job drafts and produces safety tips using an LLM.
//
// Every call is best effort: failures and timeouts are reported as
// ErrExternalService (Refine) or replaced by FallbackAdvice (Advise) and
// never reach the user as errors.
package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/neighborjob/marketplace/internal/cache"
	"github.com/neighborjob/marketplace/internal/llm"
	"github.com/neighborjob/marketplace/pkg/logger"
	"github.com/neighborjob/marketplace/pkg/metrics"
)

// ErrExternalService marks a failed or timed-out LLM call.
var ErrExternalService = errors.New("external service failure")

// FallbackAdvice is returned whenever advice cannot be generated.
const FallbackAdvice = "Ensure you have the right tools and communicate clearly with the neighbor."

// DefaultTimeout bounds each LLM call.
const DefaultTimeout = 10 * time.Second

const (
	opRefine = "refine"
	opAdvise = "advise"

	outcomeOK       = "ok"
	outcomeCached   = "cached"
	outcomeFallback = "fallback"

	adviceKeyPrefix = "advice:"
)

// Refinement is a polished job draft.
type Refinement struct {
	RefinedTitle        string `json:"refinedTitle"`
	RefinedDescription  string `json:"refinedDescription"`
	SuggestedPriceRange string `json:"suggestedPriceRange"`
}

// Advice is tip text for a job. Fallback is set when Text is FallbackAdvice
// because generation failed.
type Advice struct {
	Text     string
	Fallback bool
}

// Config tunes an Advisor.
type Config struct {
	// Model overrides the provider's default model.
	Model string
	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration
	// CacheTTL is how long generated advice is reused.
	CacheTTL time.Duration
}

// Advisor wraps an LLM client with timeouts, fallbacks and caching.
type Advisor struct {
	client llm.Client
	cache  cache.Cache
	cfg    Config
	logger *logger.Logger
	tracer trace.Tracer
}

// New creates an Advisor. client and c may be nil: without a client every
// call takes the fallback path, without a cache advice is not reused.
func New(client llm.Client, c cache.Cache, cfg Config, log *logger.Logger) *Advisor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Advisor{
		client: client,
		cache:  c,
		cfg:    cfg,
		logger: log,
		tracer: otel.Tracer("github.com/neighborjob/marketplace/internal/advisor"),
	}
}

// Enabled reports whether an LLM client is configured.
func (a *Advisor) Enabled() bool {
	return a.client != nil
}

// Refine asks the LLM to rewrite a job title and description for a
// neighbourhood audience and suggest a price range.
func (a *Advisor) Refine(ctx context.Context, title, description string) (*Refinement, error) {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "advisor.Refine")
	defer span.End()

	prompt := fmt.Sprintf(`Refine this hyper-local job posting to be professional and clear for a neighborhood app.
Title: %s
Description: %s
Return a JSON object with 'refinedTitle', 'refinedDescription', and 'suggestedPriceRange' (as a string).`, title, description)

	content, err := a.complete(ctx, prompt, true)
	if err != nil {
		a.fail(span, opRefine, start, err)
		return nil, err
	}

	var r Refinement
	if err := decodeObject(content, &r); err != nil {
		err = fmt.Errorf("%w: %v", ErrExternalService, err)
		a.fail(span, opRefine, start, err)
		return nil, err
	}
	if strings.TrimSpace(r.RefinedTitle) == "" || strings.TrimSpace(r.RefinedDescription) == "" {
		err := fmt.Errorf("%w: refinement missing title or description", ErrExternalService)
		a.fail(span, opRefine, start, err)
		return nil, err
	}

	metrics.RecordAdvisorCall(opRefine, outcomeOK, time.Since(start).Seconds())
	return &r, nil
}

// Advise returns three quick tips for a provider taking on the job. It
// never fails: on any error the result is FallbackAdvice.
func (a *Advisor) Advise(ctx context.Context, description string) Advice {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "advisor.Advise")
	defer span.End()

	key := adviceKey(description)
	if a.cache != nil {
		cached, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			a.logger.Warn("advice cache read failed", zap.Error(err))
		}
		if ok {
			span.SetAttributes(attribute.Bool("advisor.cached", true))
			metrics.RecordAdvisorCall(opAdvise, outcomeCached, time.Since(start).Seconds())
			return Advice{Text: cached}
		}
	}

	prompt := "Provide 3 quick tips for a service provider looking to complete this job safely and efficiently: " + description

	content, err := a.complete(ctx, prompt, false)
	if err == nil && strings.TrimSpace(content) == "" {
		err = fmt.Errorf("%w: empty advice", ErrExternalService)
	}
	if err != nil {
		a.fail(span, opAdvise, start, err)
		return Advice{Text: FallbackAdvice, Fallback: true}
	}

	if a.cache != nil {
		// detached from request cancellation
		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		if err := a.cache.Set(setCtx, key, content, a.cfg.CacheTTL); err != nil {
			a.logger.Warn("advice cache write failed", zap.Error(err))
		}
		cancel()
	}

	metrics.RecordAdvisorCall(opAdvise, outcomeOK, time.Since(start).Seconds())
	return Advice{Text: content}
}

func (a *Advisor) complete(ctx context.Context, prompt string, asJSON bool) (string, error) {
	if a.client == nil {
		return "", fmt.Errorf("%w: no LLM provider configured", ErrExternalService)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	resp, err := a.client.Complete(ctx, &llm.CompletionRequest{
		Model:     a.cfg.Model,
		Messages:  llm.UserMessage(prompt),
		MaxTokens: 1024,
		JSON:      asJSON,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrExternalService, a.client.Name(), err)
	}

	metrics.RecordLLMTokens(resp.Model, resp.TokensIn, resp.TokensOut)
	return resp.Content, nil
}

func (a *Advisor) fail(span trace.Span, op string, start time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.RecordAdvisorCall(op, outcomeFallback, time.Since(start).Seconds())
	a.logger.Warn("advisor call failed", zap.String("operation", op), zap.Error(err))
}

func adviceKey(description string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(description)))
	return adviceKeyPrefix + hex.EncodeToString(sum[:])
}

// decodeObject unmarshals the first JSON object in s, tolerating markdown
// code fences and surrounding prose.
func decodeObject(s string, v any) error {
	open := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if open < 0 || end < open {
		return errors.New("no JSON object in response")
	}
	return json.Unmarshal([]byte(s[open:end+1]), v)
}
