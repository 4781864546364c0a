package log

// contextStack is an ordered sequence of frames; the last element is active.
// Callers hold Logger.mu.
type contextStack struct {
	frames []ContextFrame
}

// set replaces the top frame, pushing a default frame first if the stack is empty.
func (s *contextStack) set(frame ContextFrame) {
	if len(s.frames) == 0 {
		s.frames = append(s.frames, NewContextFrame(""))
	}
	s.frames[len(s.frames)-1] = frame
}

func (s *contextStack) push(frame ContextFrame) {
	s.frames = append(s.frames, frame)
}

// pop removes the top frame. Popping an empty stack is a no-op.
func (s *contextStack) pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames[len(s.frames)-1] = ContextFrame{}
	s.frames = s.frames[:len(s.frames)-1]
}

// top returns a copy of the active frame.
func (s *contextStack) top() (ContextFrame, bool) {
	if len(s.frames) == 0 {
		return ContextFrame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

func (s *contextStack) depth() int {
	return len(s.frames)
}

func (s *contextStack) clear() {
	clear(s.frames)
	s.frames = s.frames[:0]
}

// SetContext replaces the active context frame.
// Frames should come from NewContextFrame so an unset batch index stays hidden.
func (l *Logger) SetContext(frame ContextFrame) {
	l.mu.Lock()
	l.contexts.set(frame)
	l.mu.Unlock()
}

// PushContext makes frame the active context, keeping the previous one underneath.
// See SetContext for building frames.
func (l *Logger) PushContext(frame ContextFrame) {
	l.mu.Lock()
	l.contexts.push(frame)
	l.mu.Unlock()
}

// PopContext restores the frame below the active one.
func (l *Logger) PopContext() {
	l.mu.Lock()
	l.contexts.pop()
	l.mu.Unlock()
}

// ClearContext empties the context stack.
func (l *Logger) ClearContext() {
	l.mu.Lock()
	l.contexts.clear()
	l.mu.Unlock()
}

// CurrentContext returns the active frame, or false when the stack is empty.
func (l *Logger) CurrentContext() (ContextFrame, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.contexts.top()
}

// ContextDepth returns the number of frames on the stack.
func (l *Logger) ContextDepth() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.contexts.depth()
}

// ScopedContext pushes frame and returns a function that pops it.
//
//	defer logger.ScopedContext(log.NewContextFrame("shadow pass").WithBatch(i))()
func (l *Logger) ScopedContext(frame ContextFrame) func() {
	l.PushContext(frame)
	return l.PopContext
}
