// ABOUTME: Error containment for visualization rendering.
// ABOUTME: Recovers primary-renderer faults and swaps in the fallback view.
package viz

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/2389-research/asksee/internal/projector"
)

// FallbackNotice is shown above the fallback view when the primary renderer failed.
const FallbackNotice = "Primary renderer failed; showing canvas fallback."

// ForcedNotice is shown above the fallback view when the user asked for it.
const ForcedNotice = "Showing canvas fallback."

// Result is the outcome of a guarded render.
type Result struct {
	View         string
	Notice       string
	UsedFallback bool
	Err          error
}

// Boundary renders with Primary and falls back to Fallback when Primary
// returns an error or panics, or when ForceFallback is set.
type Boundary struct {
	Primary       Renderer
	Fallback      Renderer
	ForceFallback bool
	Logger        *zap.Logger
}

// Render draws p into a width x height area.
func (b Boundary) Render(p *projector.Projection, width, height int) Result {
	if !b.ForceFallback && b.Primary != nil {
		view, err := Safely(func() (string, error) {
			return b.Primary.Render(p, width, height)
		})
		if err == nil {
			return Result{View: view}
		}
		if b.Logger != nil {
			b.Logger.Warn("primary renderer failed", zap.Error(err))
		}
		return b.fallback(p, width, height, FallbackNotice, err)
	}
	return b.fallback(p, width, height, ForcedNotice, nil)
}

func (b Boundary) fallback(p *projector.Projection, width, height int, notice string, cause error) Result {
	fb := b.Fallback
	if fb == nil {
		fb = Canvas{Selected: -1}
	}
	view, err := Safely(func() (string, error) {
		return fb.Render(p, width, height)
	})
	if err != nil {
		return Result{Notice: notice, UsedFallback: true, Err: err}
	}
	return Result{View: view, Notice: notice, UsedFallback: true, Err: cause}
}

// Safely runs fn, converting a panic into an error.
func Safely(fn func() (string, error)) (view string, err error) {
	defer func() {
		if r := recover(); r != nil {
			view = ""
			err = fmt.Errorf("render panic: %v", r)
		}
	}()
	return fn()
}

// Guard renders a whole view subtree. A panic inside view is contained and
// replaced by failed(err).
func Guard(view func() string, failed func(err error) string) string {
	out, err := Safely(func() (string, error) {
		return view(), nil
	})
	if err != nil {
		return failed(err)
	}
	return out
}
