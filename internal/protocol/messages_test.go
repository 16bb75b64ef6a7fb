package protocol

import (
	"errors"
	"testing"
)

func TestDecodeClientEventStart(t *testing.T) {
	data := []byte(`{"event":"start","role":"software","topics":["databases and SQL"],"level":"intermediate","duration":6}`)
	msg, err := DecodeClientEvent(data)
	if err != nil {
		t.Fatalf("DecodeClientEvent failed: %v", err)
	}
	start, ok := msg.(StartEvent)
	if !ok {
		t.Fatalf("expected StartEvent, got %T", msg)
	}
	if start.Role != "software" || start.DurationMinutes != 6 || start.Level != "intermediate" {
		t.Fatalf("unexpected start event: %+v", start)
	}
	if len(start.Topics) != 1 || start.Topics[0] != "databases and SQL" {
		t.Fatalf("unexpected topics: %v", start.Topics)
	}
}

func TestDecodeClientEventTranscript(t *testing.T) {
	msg, err := DecodeClientEvent([]byte(`{"event":"transcript","text":"an index speeds up lookups"}`))
	if err != nil {
		t.Fatalf("DecodeClientEvent failed: %v", err)
	}
	transcript, ok := msg.(TranscriptEvent)
	if !ok {
		t.Fatalf("expected TranscriptEvent, got %T", msg)
	}
	if transcript.Text != "an index speeds up lookups" {
		t.Fatalf("unexpected text: %q", transcript.Text)
	}
}

func TestDecodeClientEventRejections(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"invalid json", `{"event":`},
		{"missing event", `{"text":"hi"}`},
		{"unknown event", `{"event":"pause"}`},
		{"negative duration", `{"event":"start","duration":-1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeClientEvent([]byte(tc.data))
			if err == nil {
				t.Fatal("expected error")
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got %T", err)
			}
			if decodeErr.Code != ErrorCodeInvalidMessage {
				t.Fatalf("unexpected code: %s", decodeErr.Code)
			}
		})
	}
}

func TestDecodeErrorMessage(t *testing.T) {
	err := &DecodeError{Code: ErrorCodeInvalidMessage, Message: "missing event", Param: "event"}
	if got := err.Error(); got != "missing event (event)" {
		t.Fatalf("unexpected error string: %q", got)
	}
	err = &DecodeError{Code: ErrorCodeInvalidMessage, Message: "invalid json frame"}
	if got := err.Error(); got != "invalid json frame" {
		t.Fatalf("unexpected error string: %q", got)
	}
}
