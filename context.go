package sprite

import (
	"errors"
	"fmt"
)

// notCurrent is a context known not to be current on this thread. It has
// no methods issuing GPU calls; it must become possiblyCurrent first.
type notCurrent struct {
	ctx         Context
	vertexState Handle
}

// possiblyCurrent is the one context GPU calls may target.
type possiblyCurrent struct {
	ctx         Context
	vertexState Handle
}

func (c notCurrent) makeCurrent() (possiblyCurrent, error) {
	if err := c.ctx.MakeCurrent(); err != nil {
		return possiblyCurrent{}, err
	}
	return possiblyCurrent(c), nil
}

// treatAsNotCurrent demotes c without a native call. Only valid when
// another context is about to be made current, which releases c implicitly.
func (c possiblyCurrent) treatAsNotCurrent() notCurrent {
	return notCurrent(c)
}

func (c possiblyCurrent) makeNotCurrent() (notCurrent, error) {
	if err := c.ctx.MakeNotCurrent(); err != nil {
		return notCurrent{}, err
	}
	return notCurrent(c), nil
}

type currentContext struct {
	id WindowID
	possiblyCurrent
}

// contextSet holds one context per window. At most one of them is current;
// while a window is current its parked entry is nil, so no window is ever
// visible in both states.
type contextSet struct {
	parked  map[WindowID]*notCurrent
	current *currentContext
}

func newContextSet() contextSet {
	return contextSet{parked: make(map[WindowID]*notCurrent)}
}

func (s *contextSet) has(id WindowID) bool {
	_, ok := s.parked[id]
	return ok
}

func (s *contextSet) len() int {
	return len(s.parked)
}

func (s *contextSet) ids() []WindowID {
	ids := make([]WindowID, 0, len(s.parked))
	for id := range s.parked {
		ids = append(ids, id)
	}
	return ids
}

// insert registers a context that is not current.
func (s *contextSet) insert(id WindowID, ctx Context) {
	s.parked[id] = &notCurrent{ctx: ctx}
}

// insertCurrent registers a context the platform has already made current.
func (s *contextSet) insertCurrent(id WindowID, ctx Context) {
	s.parked[id] = nil
	s.current = &currentContext{id: id, possiblyCurrent: possiblyCurrent{ctx: ctx}}
}

// shareTarget returns a live context for a new one to share objects with,
// preferring the current one. It is nil when the set is empty.
func (s *contextSet) shareTarget() Context {
	if s.current != nil {
		return s.current.ctx
	}
	for _, nc := range s.parked {
		if nc != nil {
			return nc.ctx
		}
	}
	return nil
}

// makeCurrent makes the context of id current, parking the previous one.
func (s *contextSet) makeCurrent(id WindowID) error {
	if s.current != nil && s.current.id == id {
		return nil
	}
	next, ok := s.parked[id]
	if !ok {
		return fmt.Errorf("make current window %d: %w", id, ErrUnknownWindow)
	}
	if next == nil {
		return fmt.Errorf("make current window %d: context is missing", id)
	}

	s.parked[id] = nil
	pc, err := next.makeCurrent()
	if err != nil {
		s.parked[id] = next
		return fmt.Errorf("make current window %d: %w", id, err)
	}

	if prev := s.current; prev != nil {
		nc := prev.treatAsNotCurrent()
		s.parked[prev.id] = &nc
	}
	s.current = &currentContext{id: id, possiblyCurrent: pc}
	return nil
}

// ensureCurrent makes any context current when none is.
func (s *contextSet) ensureCurrent() error {
	if s.current != nil {
		return nil
	}
	if len(s.parked) == 0 {
		return ErrNoContext
	}
	var errs []error
	for id := range s.parked {
		err := s.makeCurrent(id)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// remove unregisters id and returns its context, released from the thread
// when it was current.
func (s *contextSet) remove(id WindowID) (notCurrent, error) {
	if s.current != nil && s.current.id == id {
		cur := s.current
		s.current = nil
		delete(s.parked, id)
		nc, err := cur.makeNotCurrent()
		if err != nil {
			return notCurrent(cur.possiblyCurrent), fmt.Errorf("release window %d: %w", id, err)
		}
		return nc, nil
	}
	nc, ok := s.parked[id]
	if !ok || nc == nil {
		return notCurrent{}, fmt.Errorf("remove window %d: %w", id, ErrUnknownWindow)
	}
	delete(s.parked, id)
	return *nc, nil
}

// clear releases the current context and forgets all of them.
func (s *contextSet) clear() []Context {
	var all []Context
	if s.current != nil {
		if nc, err := s.current.makeNotCurrent(); err == nil {
			all = append(all, nc.ctx)
		} else {
			all = append(all, s.current.ctx)
		}
		s.current = nil
	}
	for _, nc := range s.parked {
		if nc != nil {
			all = append(all, nc.ctx)
		}
	}
	clear(s.parked)
	return all
}
