package llm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"research-rag-be/internal/pkg/logger"
)

const failoverModule = "LLM_FAILOVER"

// Named is implemented by providers that can identify themselves in logs.
type Named interface {
	Name() string
}

// NameOf returns the provider name or its type when unnamed.
func NameOf(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// Failover tries the primary backend and, on any failure, the secondary once.
type Failover struct {
	primary   Provider
	secondary Provider
	logger    logger.ILogger
	degraded  atomic.Bool
}

var _ Provider = (*Failover)(nil)

func NewFailover(primary, secondary Provider, log logger.ILogger) *Failover {
	return &Failover{primary: primary, secondary: secondary, logger: log}
}

func (f *Failover) Name() string {
	return "failover(" + NameOf(f.primary) + "," + NameOf(f.secondary) + ")"
}

// OnSecondary reports whether the last call was served by the secondary.
func (f *Failover) OnSecondary() bool {
	return f.degraded.Load()
}

func (f *Failover) Complete(ctx context.Context, messages []Message, options ...Option) (*Completion, error) {
	res, err := f.primary.Complete(ctx, messages, options...)
	if err == nil {
		if f.degraded.CompareAndSwap(true, false) {
			f.logger.Info(failoverModule, "Primary LLM backend recovered, failing back", map[string]interface{}{
				"primary": NameOf(f.primary),
			})
		}
		return res, nil
	}

	if f.secondary == nil || ctx.Err() != nil {
		return nil, err
	}

	f.logger.Warn(failoverModule, "Primary LLM backend failed, failing over", map[string]interface{}{
		"primary":   NameOf(f.primary),
		"secondary": NameOf(f.secondary),
		"error":     err.Error(),
	})
	f.degraded.Store(true)

	res, secErr := f.secondary.Complete(ctx, messages, options...)
	if secErr != nil {
		f.logger.Error(failoverModule, "Secondary LLM backend failed", map[string]interface{}{
			"secondary": NameOf(f.secondary),
			"error":     secErr.Error(),
		})
		return nil, errors.Join(err, secErr)
	}
	return res, nil
}
