package notification

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type EventType string

const (
	NewJobAvailable EventType = "new_job_available"
	JobCancelled    EventType = "job_cancelled"
	JobAccepted     EventType = "job_accepted"
	ResendPush      EventType = "resend_push"
	ResendSMS       EventType = "resend_sms"
)

func (t EventType) IsValid() bool {
	switch t {
	case NewJobAvailable, JobCancelled, JobAccepted, ResendPush, ResendSMS:
		return true
	default:
		return false
	}
}

// Target is either every eligible translator or one translator.
// The zero value is invalid.
type Target struct {
	broadcast    bool
	translatorID string
}

func Broadcast() Target {
	return Target{broadcast: true}
}

func Translator(id string) Target {
	return Target{translatorID: id}
}

func (t Target) IsBroadcast() bool {
	return t.broadcast
}

// TranslatorID returns the targeted translator. ok is false for a broadcast.
func (t Target) TranslatorID() (id string, ok bool) {
	if t.broadcast || t.translatorID == "" {
		return "", false
	}
	return t.translatorID, true
}

func (t Target) String() string {
	if t.broadcast {
		return "broadcast"
	}
	return fmt.Sprintf("translator:%s", t.translatorID)
}

type targetJSON struct {
	Broadcast    bool   `json:"broadcast,omitempty"`
	TranslatorID string `json:"translator_id,omitempty"`
}

func (t Target) MarshalJSON() ([]byte, error) {
	if !t.broadcast && t.translatorID == "" {
		return nil, errors.New("empty notification target")
	}
	return json.Marshal(targetJSON{Broadcast: t.broadcast, TranslatorID: t.translatorID})
}

func (t *Target) UnmarshalJSON(data []byte) error {
	var raw targetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Broadcast && raw.TranslatorID != "":
		return errors.New("notification target is both broadcast and targeted")
	case raw.Broadcast:
		*t = Broadcast()
	case raw.TranslatorID != "":
		*t = Translator(raw.TranslatorID)
	default:
		return errors.New("empty notification target")
	}
	return nil
}

type Event struct {
	ID      string    `json:"id"`
	JobID   int64     `json:"job_id"`
	Type    EventType `json:"type"`
	Target  Target    `json:"target"`
	Attempt int       `json:"attempt"`
}

func NewEvent(jobID int64, eventType EventType, target Target) Event {
	return Event{
		ID:      uuid.NewString(),
		JobID:   jobID,
		Type:    eventType,
		Target:  target,
		Attempt: 1,
	}
}

func (e Event) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("unknown notification type %q", e.Type)
	}
	if !e.Target.IsBroadcast() {
		if _, ok := e.Target.TranslatorID(); !ok {
			return errors.New("empty notification target")
		}
	}
	return nil
}

// Payload is what the providers deliver to a translator.
type Payload struct {
	EventID      string    `json:"event_id"`
	JobID        int64     `json:"job_id"`
	Type         EventType `json:"type"`
	LanguagePair string    `json:"language_pair"`
	Message      string    `json:"message"`
}
