//go:build headless
// +build headless

package graphics

import "errors"

// EbitengineViewer stub for headless builds
type EbitengineViewer struct{}

// NewEbitengineViewer fails in headless builds.
func NewEbitengineViewer(Config) (*EbitengineViewer, error) {
	return nil, errors.New("ebitengine viewer not available in headless build")
}

func (v *EbitengineViewer) Show(Frame) error { return ErrClosed }
func (v *EbitengineViewer) Close() error     { return nil }
func (v *EbitengineViewer) Name() string     { return "Ebitengine-Stub" }
func (v *EbitengineViewer) Run() error {
	return errors.New("ebitengine viewer not available in headless build")
}
func (v *EbitengineViewer) Shown() int { return 0 }
