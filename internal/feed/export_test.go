package feed

// Running reports whether the poll loop is registered.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Primed reports whether a baseline snapshot has been taken.
func (p *Poller) Primed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.baseline
}
