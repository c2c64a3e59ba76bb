package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// progressDisplay shows re-encryption progress on a spinner line.
type progressDisplay struct {
	s     *spinner.Spinner
	grace time.Duration
}

func newProgress(w io.Writer, grace time.Duration) *progressDisplay {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	// Ignore color errors - continue without colored spinner if it fails.
	_ = s.Color("cyan")
	p := &progressDisplay{s: s, grace: grace}
	p.setSuffix(0)
	s.Start()
	return p
}

// Update is a reencrypt.ProgressFunc.
func (p *progressDisplay) Update(percent int) {
	p.setSuffix(percent)
}

func (p *progressDisplay) setSuffix(percent int) {
	p.s.Lock()
	p.s.Suffix = fmt.Sprintf(" Re-encrypting entries... %d%%", percent)
	p.s.Unlock()
}

// Done leaves a finished bar visible for the grace delay, then clears it.
func (p *progressDisplay) Done(ok bool) {
	if ok && p.grace > 0 {
		time.Sleep(p.grace)
	}
	p.s.Stop()
}
