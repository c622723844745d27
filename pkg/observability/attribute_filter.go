package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// defaultAllowedPrefixes are the span attribute namespaces specimin emits.
var defaultAllowedPrefixes = []string{
	"specimin.",
	"error.",
	"slicer.",
	"source.",
	"unit.",
	"target.",
	"manifest.",
}

// blockedPrefixes are attribute key prefixes that are always stripped.
var blockedPrefixes = []string{
	"user.",
}

// blockedKeys are exact attribute keys that are always stripped. Java
// sources and their paths may embed credentials, so raw text never leaves.
var blockedKeys = map[string]bool{
	"email":       true,
	"source.text": true,
	"unit.text":   true,
}

// attributeFilter is a SpanProcessor that enforces an allow-list on span
// attributes before forwarding to a delegate processor.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
	allowed  []string
}

// NewAttributeFilter returns a SpanProcessor that keeps only attributes in
// the allowed namespaces, plus any extra prefixes given. Blocked keys are
// stripped even inside an allowed namespace. When logger is non-nil every
// dropped key is logged as a warning.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger, extra ...string) sdktrace.SpanProcessor {
	allowed := append(append([]string(nil), defaultAllowedPrefixes...), extra...)

	return &attributeFilter{delegate: delegate, logger: logger, allowed: allowed}
}

// OnStart delegates to the wrapped processor.
func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

// OnEnd hands the delegate a view of s with the attributes filtered.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

// Shutdown delegates to the wrapped processor.
func (f *attributeFilter) Shutdown(ctx context.Context) error {
	if err := f.delegate.Shutdown(ctx); err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

// ForceFlush delegates to the wrapped processor.
func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	if err := f.delegate.ForceFlush(ctx); err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) isAllowed(key string) bool {
	switch {
	case blockedKeys[key], hasAnyPrefix(key, blockedPrefixes):
		f.warn(key)

		return false
	case key == "error", hasAnyPrefix(key, f.allowed):
		return true
	default:
		f.warn(key)

		return false
	}
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

func (f *attributeFilter) warn(key string) {
	if f.logger != nil {
		f.logger.Warn("attribute blocked by filter", "key", key)
	}
}

// filteredSpan wraps a ReadOnlySpan and returns only allowed attributes.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

// Attributes returns only the allowed attributes.
func (s *filteredSpan) Attributes() []attribute.KeyValue {
	orig := s.ReadOnlySpan.Attributes()
	filtered := make([]attribute.KeyValue, 0, len(orig))

	for _, kv := range orig {
		if s.filter.isAllowed(string(kv.Key)) {
			filtered = append(filtered, kv)
		}
	}

	return filtered
}
