package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/cache"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

const maxResponseSize = 1 << 20

// Config holds the configuration for the registry client
type Config struct {
	URL string
	// Timeout of zero leaves requests bounded only by the caller's context
	Timeout     time.Duration
	CachePolicy CachePolicy
}

// SubmitInput is one enrollment handed over by the pipeline
type SubmitInput struct {
	ID            string
	Descriptor    domain.Descriptor
	ImageSnapshot string
	// Replace deletes the existing registry entry first. Set only after the
	// operator confirmed the overwrite.
	Replace bool
}

// Client talks to the remote registry and reconciles the local display cache.
// It never retries.
type Client struct {
	httpClient *http.Client
	config     Config
	faces      *cache.FaceCache
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a new registry client
func NewClient(config Config, faces *cache.FaceCache, logger *slog.Logger) *Client {
	if config.CachePolicy == "" {
		config.CachePolicy = CachePolicyStrict
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		faces:  faces,
		logger: logger,
		now:    time.Now,
	}
}

// Policy returns the cache policy in effect
func (c *Client) Policy() CachePolicy {
	return c.config.CachePolicy
}

// Submit creates the face on the registry and upserts the cache entry
func (c *Client) Submit(ctx context.Context, in SubmitInput) (*domain.EnrolledFace, error) {
	face := domain.EnrolledFace{
		ID:            in.ID,
		Descriptor:    in.Descriptor.Clone(),
		ImageSnapshot: in.ImageSnapshot,
		CreatedAt:     c.now().UTC(),
	}

	resp, err := c.create(ctx, in)
	if err != nil {
		if c.config.CachePolicy == CachePolicyOptimistic {
			c.upsert(ctx, face)
		}
		return nil, err
	}

	face.RegistryID = resp.ID
	c.upsert(ctx, face)

	c.logger.Info("face enrolled",
		"member_id", face.ID,
		"registry_id", face.RegistryID,
		"replaced", in.Replace,
	)

	return &face, nil
}

func (c *Client) create(ctx context.Context, in SubmitInput) (*Response, error) {
	if in.Replace {
		// The registry may not have it even though the cache does
		if _, err := c.do(ctx, Request{Action: ActionDeleteFace, MemberID: in.ID}); err != nil && !errors.Is(err, domain.ErrFaceNotFound) {
			return nil, err
		}
	}

	descriptor, err := EncodeDescriptor(in.Descriptor)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	resp, err := c.do(ctx, Request{
		Action:     ActionCreateFace,
		MemberID:   in.ID,
		Descriptor: descriptor,
	})
	if err != nil && in.Replace {
		// the old face is gone from the registry, so is its cache entry
		c.logger.Warn("face deleted but not recreated", "member_id", in.ID, "error", err)
		c.evict(ctx, in.ID)
	}
	return resp, err
}

// Remove deletes the face from the registry and evicts the cache entry.
// When the registry does not know the face the entry is still evicted and
// domain.ErrFaceNotFound is returned.
func (c *Client) Remove(ctx context.Context, id string) error {
	_, err := c.do(ctx, Request{Action: ActionDeleteFace, MemberID: id})
	if errors.Is(err, domain.ErrFaceNotFound) {
		c.evict(ctx, id)
		return err
	}
	if err != nil {
		if c.config.CachePolicy == CachePolicyOptimistic {
			c.evict(ctx, id)
		}
		return err
	}

	c.evict(ctx, id)
	c.logger.Info("face removed", "member_id", id)
	return nil
}

func (c *Client) upsert(ctx context.Context, face domain.EnrolledFace) {
	if err := c.faces.Upsert(ctx, face); err != nil {
		c.logger.Error("failed to update display cache", "member_id", face.ID, "error", err)
	}
}

func (c *Client) evict(ctx context.Context, id string) {
	if _, err := c.faces.Evict(ctx, id); err != nil {
		c.logger.Error("failed to evict display cache entry", "member_id", id, "error", err)
	}
}

// do executes a single registry request
func (c *Client) do(ctx context.Context, body Request) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domain.ErrInternal.WithError(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.ErrRegistry.WithError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.ErrRegistry.WithError(fmt.Errorf("do request: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, domain.ErrRegistry.WithError(fmt.Errorf("read response: %w", err))
	}

	var out Response
	parseErr := json.Unmarshal(respBody, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		base := domain.ErrRegistry
		if resp.StatusCode == http.StatusNotFound && body.Action == ActionDeleteFace {
			base = domain.ErrFaceNotFound
		}
		appErr := base.WithError(fmt.Errorf("registry returned status %d", resp.StatusCode))
		if parseErr == nil && strings.TrimSpace(out.Message) != "" {
			appErr = appErr.WithMessage(out.Message)
		}
		return nil, appErr
	}

	if parseErr != nil {
		if len(bytes.TrimSpace(respBody)) == 0 {
			return &out, nil
		}
		return nil, domain.ErrRegistry.WithError(fmt.Errorf("decode response: %w", parseErr))
	}

	if out.Error {
		appErr := domain.ErrRegistry.WithError(errors.New("registry reported an error"))
		if strings.TrimSpace(out.Message) != "" {
			appErr = appErr.WithMessage(out.Message)
		}
		return nil, appErr
	}

	return &out, nil
}

// EncodeDescriptor renders the descriptor as a JSON numeric array.
// encoding/json writes the shortest representation that parses back to the same float64.
func EncodeDescriptor(d domain.Descriptor) (string, error) {
	if d == nil {
		d = domain.Descriptor{}
	}
	b, err := json.Marshal([]float64(d))
	if err != nil {
		return "", fmt.Errorf("encode descriptor: %w", err)
	}
	return string(b), nil
}

// DecodeDescriptor parses a descriptor produced by EncodeDescriptor
func DecodeDescriptor(s string) (domain.Descriptor, error) {
	var out []float64
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}
	return domain.Descriptor(out), nil
}
