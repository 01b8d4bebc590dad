package errors

import "sync"

// Diagnostic is a non-fatal problem recorded during a pass
type Diagnostic struct {
	Code     ErrorCode `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// Collector accumulates warnings and errors instead of aborting the pass.
// The zero value is ready to use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Warn records a warning
func (c *Collector) Warn(code ErrorCode, message string) {
	c.add(Diagnostic{Code: code, Severity: SeverityWarning, Message: message})
}

// Error records an error
func (c *Collector) Error(code ErrorCode, message string) {
	c.add(Diagnostic{Code: code, Severity: SeverityError, Message: message})
}

func (c *Collector) add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Warnings returns every recorded warning in order
func (c *Collector) Warnings() []Diagnostic {
	return c.filter(SeverityWarning)
}

// Errors returns every recorded error in order
func (c *Collector) Errors() []Diagnostic {
	return c.filter(SeverityError)
}

// All returns every diagnostic in recording order
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns how many diagnostics carry the given code
func (c *Collector) Count(code ErrorCode) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

func (c *Collector) filter(sev Severity) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Diagnostic
	for _, d := range c.items {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}
