package normalize

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/hvkurs/kursmap/pkg/catalogs"
	"github.com/hvkurs/kursmap/pkg/constants"
	"github.com/hvkurs/kursmap/pkg/errors"
	"github.com/hvkurs/kursmap/pkg/logging"
)

const eventSystemPrompt = `Du är en noggrann dataextraktionsassistent för Hemvärnets kurskatalog.
Du får ett textblock från en kurskatalog samt en lista över kända kursmallar.
Om blocket beskriver ett kurstillfälle, svara med ETT JSON-objekt med fälten:
templateId (id för den kursmall tillfället hör till, välj från listan),
courseDates (lista av {"start","end"} i formatet YYYYMMDD),
location, eventResponsible, applicationDeadline (YYYYMMDD), spots (heltal),
status ("open", "closed" eller "cancelled") samt notes.
Utelämna fält du inte kan belägga i texten. Hitta aldrig på värden.
Om blocket inte beskriver ett kurstillfälle, eller om ingen kursmall passar,
svara med exakt null. Svara alltid med enbart JSON, ingen annan text.`

const enrichSystemPrompt = `Du är en noggrann dataextraktionsassistent för Hemvärnets kurskatalog.
Du får en kursmall i JSON samt källtext ur en kurskatalog som beskriver kursen.
Fyll i mallens tomma beskrivande fält (description, targetAudience, syllabus,
purpose, learningObjectives, examination, prerequisites, literature,
additionalInfo, typicalDuration) med information som uttryckligen står i
källtexten. Ändra aldrig id, name, shortName, category eller courseResponsible.
Hitta aldrig på värden; lämna fält tomma när källtexten saknar underlag.
Om källtexten inte innehåller någon användbar information, svara med exakt null.
Svara alltid med enbart JSON-objektet för mallen, ingen annan text.`

// Gemini normalizes records through the Gemini API. Calls are
// throttled to stay within free-tier rate limits and retried on
// transient failures.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	retry       RetryPolicy
	throttle    time.Duration
	logger      *zerolog.Logger

	mu       sync.Mutex
	lastCall time.Time
}

// GeminiOption configures a Gemini normalizer.
type GeminiOption func(*Gemini)

// WithModel overrides the default model.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithThrottle overrides the minimum delay between calls.
func WithThrottle(d time.Duration) GeminiOption {
	return func(g *Gemini) { g.throttle = d }
}

// WithRetryPolicy overrides the transient-failure retry policy.
func WithRetryPolicy(p RetryPolicy) GeminiOption {
	return func(g *Gemini) { g.retry = p }
}

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(logger *zerolog.Logger) GeminiOption {
	return func(g *Gemini) { g.logger = logger }
}

// NewGemini creates a Gemini-backed normalizer.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.ErrAPIKeyRequired
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &errors.APIError{
			Service: "gemini",
			Message: "failed to create client",
			Err:     err,
		}
	}

	g := &Gemini{
		client:      client,
		model:       constants.DefaultModel,
		temperature: constants.DefaultTemperature,
		retry:       DefaultRetryPolicy(),
		throttle:    constants.DefaultThrottle,
		logger:      logging.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.model
}

// NormalizeEvent implements Normalizer.
func (g *Gemini) NormalizeEvent(ctx context.Context, block string, refs []TemplateRef) (*catalogs.Event, bool, error) {
	payload, err := json.Marshal(struct {
		Text           string        `json:"text"`
		KnownTemplates []TemplateRef `json:"knownTemplates"`
	}{Text: block, KnownTemplates: refs})
	if err != nil {
		return nil, false, errors.WrapParse("json", "event request", err)
	}

	raw, err := g.generate(ctx, "normalize event", eventSystemPrompt, string(payload))
	if err != nil {
		return nil, false, err
	}

	event, ok := parseEventRecord(raw)
	if !ok {
		g.logger.Debug().Str("response", truncate(raw, 200)).Msg("no event record in block")
		return nil, false, nil
	}
	return event, true, nil
}

// EnrichTemplate implements Normalizer.
func (g *Gemini) EnrichTemplate(ctx context.Context, template *catalogs.Template, sourceText string) (*catalogs.Template, bool, error) {
	encoded, err := json.Marshal(template)
	if err != nil {
		return nil, false, errors.WrapParse("json", "template request", err)
	}
	payload, err := json.Marshal(struct {
		Template   json.RawMessage `json:"template"`
		SourceText string          `json:"sourceText"`
	}{Template: encoded, SourceText: sourceText})
	if err != nil {
		return nil, false, errors.WrapParse("json", "template request", err)
	}

	raw, err := g.generate(ctx, "enrich template", enrichSystemPrompt, string(payload))
	if err != nil {
		return nil, false, err
	}

	enriched, ok := parseTemplateRecord(raw)
	if !ok {
		g.logger.Debug().Str("template", template.ID).Msg("no enrichment returned")
		return nil, false, nil
	}
	return enriched, true, nil
}

// generate performs one throttled, retried content generation call and
// returns the raw text of the response.
func (g *Gemini) generate(ctx context.Context, operation, system, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, constants.DefaultNormalizeTimeout)
	defer cancel()

	var raw string
	err := g.retry.Do(timeoutCtx, operation, func() error {
		if err := g.waitThrottle(timeoutCtx); err != nil {
			return err
		}

		resp, err := g.client.Models.GenerateContent(timeoutCtx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature:       genai.Ptr(g.temperature),
			ResponseMIMEType:  "application/json",
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		})
		if err != nil {
			return classifyAPIError(err)
		}
		raw = resp.Text()
		return nil
	})
	return raw, err
}

// waitThrottle blocks until the minimum inter-call delay has elapsed.
func (g *Gemini) waitThrottle(ctx context.Context) error {
	g.mu.Lock()
	wait := g.throttle - time.Since(g.lastCall)
	g.lastCall = time.Now().Add(wait)
	g.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// classifyAPIError maps SDK failures onto the shared error taxonomy so
// the retry policy can tell transient from permanent.
func classifyAPIError(err error) error {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return &errors.APIError{
			Service:    "gemini",
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	return &errors.APIError{
		Service: "gemini",
		Message: "generation failed",
		Err:     err,
	}
}

// truncate shortens diagnostic strings for log output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
