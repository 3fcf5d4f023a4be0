// Package event classifies verified Events API payloads.
package event

import (
	"encoding/json"
	"fmt"

	"github.com/slack-go/slack/slackevents"
)

// Kind discriminates an Inbound event.
type Kind int

const (
	// KindIgnorable is anything the service does not act on.
	KindIgnorable Kind = iota
	// KindChallenge is the one-time url_verification handshake.
	KindChallenge
	// KindMessage is a message posted by a human in a channel the app can see.
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindChallenge:
		return "challenge"
	case KindMessage:
		return "message"
	default:
		return "ignorable"
	}
}

// Message subtypes that do not announce a new post.
const (
	subtypeBotMessage     = "bot_message"
	subtypeMessageChanged = "message_changed"
	subtypeMessageDeleted = "message_deleted"
)

// Inbound is the classified form of a verified request body.
type Inbound struct {
	Kind Kind

	// Challenge is set for KindChallenge.
	Challenge string

	// Text is set for KindMessage.
	Text string

	// Reason explains a KindIgnorable classification.
	Reason string

	// Metadata for logging only.
	EventID string
	Channel string
	User    string
}

// Classify turns a verified raw body into an Inbound event. The returned error
// is non-nil only when the body is not JSON; the event is then KindIgnorable.
func Classify(body []byte) (Inbound, error) {
	if !json.Valid(body) {
		return Inbound{Kind: KindIgnorable, Reason: "malformed"}, fmt.Errorf("classify: body is not valid JSON")
	}

	// Token comparison is redundant with signature verification.
	ev, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		// ParseEvent rejects inner event types it has no mapping for. Those are
		// valid deliveries we simply do not handle.
		return Inbound{Kind: KindIgnorable, Reason: "unsupported_event"}, nil
	}

	switch ev.Type {
	case slackevents.URLVerification:
		uv, ok := ev.Data.(*slackevents.EventsAPIURLVerificationEvent)
		if !ok {
			return Inbound{Kind: KindIgnorable, Reason: "malformed_challenge"}, nil
		}
		return Inbound{Kind: KindChallenge, Challenge: uv.Challenge}, nil

	case slackevents.CallbackEvent:
		return classifyCallback(ev), nil

	default:
		return Inbound{Kind: KindIgnorable, Reason: "type:" + ev.Type}, nil
	}
}

func classifyCallback(ev slackevents.EventsAPIEvent) Inbound {
	in := Inbound{Kind: KindIgnorable}
	if cb, ok := ev.Data.(*slackevents.EventsAPICallbackEvent); ok {
		in.EventID = cb.EventID
	}

	if ev.InnerEvent.Type != string(slackevents.Message) {
		in.Reason = "inner:" + ev.InnerEvent.Type
		return in
	}

	msg, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		in.Reason = "malformed_message"
		return in
	}
	in.Channel = msg.Channel
	in.User = msg.User

	if msg.BotID != "" || msg.SubType == subtypeBotMessage {
		in.Reason = "bot_origin"
		return in
	}

	switch msg.SubType {
	case subtypeMessageChanged, subtypeMessageDeleted:
		in.Reason = "subtype:" + msg.SubType
		return in
	}

	in.Kind = KindMessage
	in.Text = msg.Text
	return in
}
