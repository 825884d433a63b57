// Package render is the pure rendering engine of the notification pipeline.
// It maps a claimed notification plus its joined context (user, kudos,
// settings, weekly stats) to a channel-native payload: a Slack Block Kit
// message or an HTML email. The package performs no I/O; every input it
// needs is loaded by the dispatch loop and passed in.
package render

// Config carries the application-level values renderers interpolate into
// payloads. It is injected at construction time rather than read from the
// environment so the engine stays testable.
type Config struct {
	// AppURL is the public base URL of the kudos web app, used for all
	// deep links (kudos detail, give-kudos, leaderboard, settings).
	AppURL string
}

// SlackMessage is the payload for one chat.postMessage call.
type SlackMessage struct {
	Channel string       `json:"channel"`
	Blocks  []SlackBlock `json:"blocks"`
}

// SlackBlock is a Slack Block Kit block. The dispatcher only ever emits
// section, image and context blocks.
type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`     // section body
	Fields   []SlackText `json:"fields,omitempty"`   // section field columns
	Elements []SlackText `json:"elements,omitempty"` // context elements
	ImageURL string      `json:"image_url,omitempty"`
	AltText  string      `json:"alt_text,omitempty"`
}

// SlackText is a Block Kit text object.
type SlackText struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

// EmailContent is a rendered email ready for the email sender.
type EmailContent struct {
	Subject string
	HTML    string
}

func sectionBlock(text string) SlackBlock {
	return SlackBlock{
		Type: "section",
		Text: &SlackText{Type: "mrkdwn", Text: text},
	}
}

func fieldsBlock(fields ...string) SlackBlock {
	texts := make([]SlackText, 0, len(fields))
	for _, f := range fields {
		texts = append(texts, SlackText{Type: "mrkdwn", Text: f})
	}
	return SlackBlock{Type: "section", Fields: texts}
}

func imageBlock(url, alt string) SlackBlock {
	return SlackBlock{Type: "image", ImageURL: url, AltText: alt}
}

func contextBlock(text string) SlackBlock {
	return SlackBlock{
		Type:     "context",
		Elements: []SlackText{{Type: "mrkdwn", Text: text}},
	}
}
