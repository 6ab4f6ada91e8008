package transform

import (
	"context"
	"epsg-map-service/internal/domain"
	"epsg-map-service/internal/ports"
	"fmt"
	"sync"
)

// MockTransformProvider answers from a fixed function and records every call.
type MockTransformProvider struct {
	mu    sync.Mutex
	calls []ports.TransformRequest
	fn    func(ports.TransformRequest) (ports.TransformResult, error)
}

// NewMockTransformProvider returns a provider computing results with fn.
// A nil fn shifts forward requests by (+1000, +2000) and inverse ones back.
func NewMockTransformProvider(fn func(ports.TransformRequest) (ports.TransformResult, error)) *MockTransformProvider {
	if fn == nil {
		fn = OffsetTransform
	}
	return &MockTransformProvider{fn: fn}
}

func (m *MockTransformProvider) Transform(ctx context.Context, req ports.TransformRequest) (ports.TransformResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.fn
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ports.TransformResult{}, err
	}
	return fn(req)
}

// Calls returns a copy of the recorded requests.
func (m *MockTransformProvider) Calls() []ports.TransformRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.TransformRequest(nil), m.calls...)
}

// SetFunc replaces the result function.
func (m *MockTransformProvider) SetFunc(fn func(ports.TransformRequest) (ports.TransformResult, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
}

// OffsetTransform is a reversible fake projection.
func OffsetTransform(req ports.TransformRequest) (ports.TransformResult, error) {
	switch req.Direction {
	case domain.Forward:
		return ports.TransformResult{X: req.X + 1000, Y: req.Y + 2000}, nil
	case domain.Inverse:
		return ports.TransformResult{X: req.X - 1000, Y: req.Y - 2000}, nil
	}
	return ports.TransformResult{}, fmt.Errorf("unknown direction %q", req.Direction)
}
