// Package gemini implements the sommelier capability against the
// Gemini generateContent API, with SSE streaming for incremental field
// delivery and an enrichment cache consulted before any model call.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"wine-cellar-be/internal/constant"
	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/pkg/sommelier"
)

const (
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 60 * time.Second
	baseURL        = "https://generativelanguage.googleapis.com/v1beta/models"
)

// CacheReader is the enrichment cache consulted before the model.
// Exact returns nil on a miss. Near returns the closest same-wine entry
// with a different vintage or cuvée, if any.
type CacheReader interface {
	Exact(ctx context.Context, lookupKey string) (*sommelier.EnrichResult, error)
	Near(ctx context.Context, lookupKey string) (cachedKey string, res *sommelier.EnrichResult, err error)
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	cache      CacheReader
	log        logger.ILogger

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

func NewClient(cfg Config, cache CacheReader, log logger.ILogger) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		log:        log,
		inflight:   make(map[string]context.CancelFunc),
	}
}

var _ sommelier.Client = (*Client)(nil)

// Identify streams a wine identification. Tier selects the prompt:
// tier 0 is the cheap extraction pass, higher tiers reason over the
// accumulated evidence.
func (c *Client) Identify(ctx context.Context, req sommelier.IdentifyRequest) (<-chan sommelier.IdentifyEvent, error) {
	if req.Text == "" && req.ImageRef == "" && len(req.Augmentation) == 0 {
		return nil, fmt.Errorf("gemini: empty identify request")
	}

	prompt := c.identifyPrompt(req)
	streamCtx := c.track(ctx, req.RequestID)

	out := make(chan sommelier.IdentifyEvent, 16)
	go func() {
		defer close(out)
		defer c.untrack(req.RequestID)

		text, err := c.stream(streamCtx, prompt, req.ImageRef, func(accumulated string, emitted map[string]bool) {
			for field, value := range completedStringFields(accumulated) {
				if !emitted[field] {
					emitted[field] = true
					out <- sommelier.IdentifyEvent{Partial: &sommelier.FieldPartial{Field: field, Value: value}}
				}
			}
		})
		if err != nil {
			out <- sommelier.IdentifyEvent{Err: c.mapErr(err, req.ImageRef != "")}
			return
		}

		final, err := parseIdentifyPayload(text)
		if err != nil {
			c.warn("unparseable identify payload", err)
			out <- sommelier.IdentifyEvent{Err: sommelier.ErrUnavailable}
			return
		}
		out <- sommelier.IdentifyEvent{Final: final}
	}()
	return out, nil
}

func (c *Client) identifyPrompt(req sommelier.IdentifyRequest) string {
	evidence := make([]string, 0, len(req.Augmentation)+2)
	if req.Text != "" {
		evidence = append(evidence, "Typed description: "+req.Text)
	}
	if req.ImageRef != "" {
		evidence = append(evidence, "A label photograph is attached.")
	}
	for _, a := range req.Augmentation {
		evidence = append(evidence, "Additional detail: "+a)
	}
	ev := strings.Join(evidence, "\n")

	locked := "none"
	if len(req.Locked) > 0 {
		pairs := make([]string, 0, len(req.Locked))
		for f, v := range req.Locked {
			pairs = append(pairs, fmt.Sprintf("  %s = %q", f, v))
		}
		locked = strings.Join(pairs, "\n")
	}

	if req.Tier > 0 {
		return fmt.Sprintf(constant.IdentifyEscalationPromptV2, ev, req.Tier-1, locked)
	}
	return fmt.Sprintf(constant.IdentifyPromptV2, ev, locked)
}

// Enrich streams reference data, consulting the cache before the model.
func (c *Client) Enrich(ctx context.Context, req sommelier.EnrichRequest) (<-chan sommelier.EnrichEvent, error) {
	out := make(chan sommelier.EnrichEvent, 16)

	if !req.Fresh && c.cache != nil {
		if hit, err := c.cache.Exact(ctx, req.LookupKey); err == nil && hit != nil {
			go func() {
				defer close(out)
				cached := *hit
				cached.Source = sommelier.SourceCache
				out <- sommelier.EnrichEvent{Final: &cached}
			}()
			return out, nil
		}
		if cachedKey, near, err := c.cache.Near(ctx, req.LookupKey); err == nil && near != nil {
			go func() {
				defer close(out)
				cached := *near
				cached.Source = sommelier.SourceCache
				out <- sommelier.EnrichEvent{Mismatch: &sommelier.CacheMismatch{
					RequestedKey: req.LookupKey,
					CachedKey:    cachedKey,
					Cached:       &cached,
				}}
			}()
			return out, nil
		}
	}

	prompt := fmt.Sprintf(constant.EnrichPromptV1, req.Producer, req.WineName, req.Vintage)
	streamCtx := c.track(ctx, req.RequestID)

	go func() {
		defer close(out)
		defer c.untrack(req.RequestID)

		text, err := c.stream(streamCtx, prompt, "", func(accumulated string, emitted map[string]bool) {
			for section, value := range completedStringFields(accumulated) {
				if !emitted[section] {
					emitted[section] = true
					out <- sommelier.EnrichEvent{Partial: &sommelier.SectionPartial{Section: section, Value: value}}
				}
			}
		})
		if err != nil {
			out <- sommelier.EnrichEvent{Err: c.mapErr(err, false)}
			return
		}

		final, err := parseEnrichPayload(text)
		if err != nil {
			c.warn("unparseable enrich payload", err)
			out <- sommelier.EnrichEvent{Err: sommelier.ErrUnavailable}
			return
		}
		final.LookupKey = req.LookupKey
		final.Source = sommelier.SourceInference
		out <- sommelier.EnrichEvent{Final: final}
	}()
	return out, nil
}

// Abandon cancels the in-flight request, if still running.
func (c *Client) Abandon(_ context.Context, requestID string) error {
	c.mu.Lock()
	cancel, ok := c.inflight[requestID]
	delete(c.inflight, requestID)
	c.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

// ExplainCandidates is a plain one-shot completion.
func (c *Client) ExplainCandidates(ctx context.Context, entityKind, query string, candidates []string) (string, error) {
	list := make([]string, len(candidates))
	for i, cand := range candidates {
		list[i] = fmt.Sprintf("%d. %s", i+1, cand)
	}
	prompt := fmt.Sprintf(constant.ExplainCandidatesPromptV1, entityKind, query, strings.Join(list, "\n"))

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", c.mapErr(err, false)
	}
	return strings.TrimSpace(text), nil
}

// track derives the bounded stream context from the caller's and
// registers its cancel func so Abandon can reach the request after the
// originating dispatch has returned. Cancelling either the caller's
// context or the tracked entry stops the stream.
func (c *Client) track(ctx context.Context, requestID string) context.Context {
	streamCtx, cancel := context.WithTimeout(ctx, c.httpClient.Timeout)
	c.mu.Lock()
	c.inflight[requestID] = cancel
	c.mu.Unlock()
	return streamCtx
}

func (c *Client) untrack(requestID string) {
	c.mu.Lock()
	if cancel, ok := c.inflight[requestID]; ok {
		cancel()
		delete(c.inflight, requestID)
	}
	c.mu.Unlock()
}

// mapErr folds transport failures onto the sommelier sentinels.
func (c *Client) mapErr(err error, hadImage bool) error {
	var httpErr *statusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return sommelier.ErrTimeout
	case errors.Is(err, context.Canceled):
		return sommelier.ErrTimeout
	case errors.As(err, &httpErr):
		switch {
		case httpErr.code == http.StatusTooManyRequests && strings.Contains(strings.ToLower(httpErr.body), "quota"):
			return sommelier.ErrQuotaExceeded
		case httpErr.code == http.StatusTooManyRequests:
			return sommelier.ErrRateLimited
		case httpErr.code == http.StatusBadRequest && hadImage:
			return sommelier.ErrUnreadableImage
		case httpErr.code >= 500:
			return sommelier.ErrUnavailable
		default:
			return sommelier.ErrUnavailable
		}
	default:
		return err
	}
}

func (c *Client) warn(msg string, err error) {
	if c.log != nil {
		c.log.Warn("Sommelier", msg, map[string]interface{}{"error": err.Error()})
	}
}
