package web

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSession_CanSubmit(t *testing.T) {
	tests := []struct {
		name        string
		destination string
		date        string
		want        bool
	}{
		{"both empty", "", "", false},
		{"destination only", "Paris", "", false},
		{"date only", "", "2030-06-15", false},
		{"both set", "Paris", "2030-06-15", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(new(MockItineraryClient))
			s.OnChange(FieldDestination, tt.destination)
			s.OnChange(FieldDate, tt.date)
			assert.Equal(t, tt.want, s.CanSubmit())
		})
	}
}

func TestSession_OnChange(t *testing.T) {
	s := NewSession(new(MockItineraryClient))

	s.OnChange(FieldDestination, "Lisbon")
	s.OnChange(FieldDate, "2030-01-02")
	s.OnChange("budget", "lots")

	assert.Equal(t, FormInput{Destination: "Lisbon", Date: "2030-01-02"}, s.Form())

	s.OnChange(FieldDestination, "")
	assert.Equal(t, FormInput{Date: "2030-01-02"}, s.Form())
	assert.False(t, s.CanSubmit())
}

func TestSession_Submit_Success(t *testing.T) {
	client := new(MockItineraryClient)
	want := sampleItinerary()
	client.On("CreateItinerary", mock.Anything, FormInput{Destination: "Paris", Date: "2024-06-15"}).Return(want, nil).Once()

	s := NewSession(client)
	s.OnChange(FieldDestination, "Paris")
	s.OnChange(FieldDate, "2024-06-15")
	s.Submit(context.Background())

	state := s.State()
	assert.False(t, state.Pending)
	assert.Empty(t, state.ErrorMessage)
	assert.Same(t, want, state.Result)
	client.AssertExpectations(t)
}

func TestSession_Submit_Failure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "business error",
			err:  &ResponseError{StatusCode: http.StatusBadRequest, Body: []byte(`{"error":"Destination not found"}`)},
			want: "Destination not found",
		},
		{
			name: "field details",
			err: &ResponseError{StatusCode: http.StatusBadRequest, Body: []byte(
				`{"details":{"destination":["Required"],"date":["Required","Must be future"]}}`)},
			want: "Required, Required, Must be future",
		},
		{
			name: "network failure",
			err:  errors.New("connection reset by peer"),
			want: FallbackErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockItineraryClient)
			client.On("CreateItinerary", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			s := NewSession(client)
			s.OnChange(FieldDestination, "Atlantis")
			s.OnChange(FieldDate, "2030-01-01")
			s.Submit(context.Background())

			state := s.State()
			assert.False(t, state.Pending)
			assert.Equal(t, tt.want, state.ErrorMessage)
			assert.Nil(t, state.Result)
			assert.True(t, s.CanSubmit(), "form stays usable after a failure")
		})
	}
}

func TestSession_Submit_ClearsPreviousOutcome(t *testing.T) {
	client := new(MockItineraryClient)
	client.On("CreateItinerary", mock.Anything, mock.Anything).
		Return(nil, &ResponseError{StatusCode: http.StatusBadRequest, Body: []byte(`{"error":"first"}`)}).Once()
	client.On("CreateItinerary", mock.Anything, mock.Anything).Return(sampleItinerary(), nil).Once()

	s := NewSession(client)
	s.OnChange(FieldDestination, "Paris")
	s.OnChange(FieldDate, "2024-06-15")

	s.Submit(context.Background())
	assert.Equal(t, "first", s.State().ErrorMessage)

	s.Submit(context.Background())
	state := s.State()
	assert.Empty(t, state.ErrorMessage)
	assert.NotNil(t, state.Result)
	client.AssertExpectations(t)
}

func TestSession_PendingDuringFlight(t *testing.T) {
	client := newBlockingClient()
	s := NewSession(client)
	s.OnChange(FieldDestination, "Paris")
	s.OnChange(FieldDate, "2024-06-15")

	before := s.State()
	assert.False(t, before.Pending)

	done := make(chan struct{})
	go func() {
		s.Submit(context.Background())
		close(done)
	}()

	select {
	case input := <-client.started:
		assert.Equal(t, "Paris", input.Destination)
	case <-time.After(2 * time.Second):
		t.Fatal("request never started")
	}

	inFlight := s.State()
	assert.True(t, inFlight.Pending)
	assert.Empty(t, inFlight.ErrorMessage)
	assert.Nil(t, inFlight.Result)
	assert.False(t, s.CanSubmit(), "submit control is disabled while pending")

	client.release <- blockingResult{itinerary: sampleItinerary()}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submit never settled")
	}

	after := s.State()
	assert.False(t, after.Pending)
	assert.NotNil(t, after.Result)
	assert.True(t, s.CanSubmit())
}

func TestSession_ResponseAfterCloseIsDiscarded(t *testing.T) {
	client := newBlockingClient()
	s := NewSession(client)
	s.OnChange(FieldDestination, "Paris")
	s.OnChange(FieldDate, "2024-06-15")

	done := make(chan struct{})
	go func() {
		s.Submit(context.Background())
		close(done)
	}()

	<-client.started
	s.Close()
	client.release <- blockingResult{itinerary: sampleItinerary()}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submit never settled")
	}

	state := s.State()
	assert.True(t, state.Pending, "state of a closed session is left untouched")
	assert.Nil(t, state.Result)
	assert.Empty(t, state.ErrorMessage)
}

func TestSession_SubmitAfterCloseIsNoop(t *testing.T) {
	client := new(MockItineraryClient)
	s := NewSession(client)
	s.OnChange(FieldDestination, "Paris")
	s.OnChange(FieldDate, "2024-06-15")
	s.Close()

	s.Submit(context.Background())

	require.Equal(t, RequestState{}, s.State())
	client.AssertNotCalled(t, "CreateItinerary", mock.Anything, mock.Anything)
}

func TestSession_Fail(t *testing.T) {
	s := NewSession(new(MockItineraryClient))
	s.OnChange(FieldDestination, "Paris")
	s.Fail(RateLimitedMessage)

	assert.Equal(t, RequestState{ErrorMessage: RateLimitedMessage}, s.State())
	assert.Equal(t, "Paris", s.Form().Destination)

	s.Close()
	s.Fail("ignored")
	assert.Equal(t, RateLimitedMessage, s.State().ErrorMessage)
}
