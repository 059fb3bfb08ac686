package web

import (
	"context"
	"sync"

	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/NomadCrew/itinerary-builder/types"
)

// Form field names accepted by Session.OnChange.
const (
	FieldDestination = "destination"
	FieldDate        = "date"
)

// RequestState tracks the lifecycle of the latest submission.
type RequestState struct {
	Pending      bool
	ErrorMessage string
	Result       *types.Itinerary
}

// Session owns the form and request state of one itinerary form instance.
type Session struct {
	client ItineraryClient

	mu     sync.Mutex
	form   FormInput
	state  RequestState
	closed bool
}

func NewSession(client ItineraryClient) *Session {
	return &Session{client: client}
}

// OnChange sets a single form field. Unknown field names are ignored.
func (s *Session) OnChange(field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldDestination:
		s.form.Destination = value
	case FieldDate:
		s.form.Date = value
	}
}

// CanSubmit reports whether the submit control is enabled.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.state.Pending && s.form.Destination != "" && s.form.Date != ""
}

func (s *Session) Form() FormInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// State returns a snapshot of the request state.
func (s *Session) State() RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit posts the current form to the API and records the outcome. It does
// not check CanSubmit and imposes no deadline of its own.
func (s *Session) Submit(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Pending = true
	s.state.ErrorMessage = ""
	s.state.Result = nil
	input := s.form
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if !s.closed {
			s.state.Pending = false
		}
		s.mu.Unlock()
	}()

	itinerary, err := s.client.CreateItinerary(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		logger.GetLogger().Debugw("Discarding itinerary response for closed session", "destination", input.Destination)
		return
	}
	if err != nil {
		logger.GetLogger().Warnw("Itinerary request failed", "destination", input.Destination, "error", err)
		s.state.ErrorMessage = ExtractErrorMessage(err)
		return
	}
	s.state.Result = itinerary
}

// Fail records message as the outcome of a submission that never reached
// the API.
func (s *Session) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state.Pending = false
	s.state.Result = nil
	s.state.ErrorMessage = message
}

// Close destroys the session. Responses that arrive afterwards are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
