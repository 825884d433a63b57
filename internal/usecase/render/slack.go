package render

import (
	"fmt"
	"strings"

	"kudos-dispatch/internal/domain/entity"
)

// Slack renders a notification into a Slack Block Kit message addressed to
// the recipient's Slack user id. kudos is required for the kudos-linked
// types and stats for weekly_reminder; both are nil otherwise.
func Slack(n *entity.NotificationRecord, kudos *entity.KudosContext, stats *entity.WeeklyStats, slackUserID string, cfg Config) (*SlackMessage, error) {
	msg := &SlackMessage{Channel: slackUserID}

	switch n.Type {
	case entity.TypeKudosReceived:
		if kudos == nil {
			return nil, ErrMissingKudosContext
		}
		msg.Blocks = append(msg.Blocks,
			sectionBlock(fmt.Sprintf("Hey <@%s>! You've received kudos from *%s*! :tada:", slackUserID, kudos.GiverName)),
			fieldsBlock(fmt.Sprintf("*Category:*\n%s", kudos.CategoryName)),
		)
		appendKudosDetails(msg, kudos)

	case entity.TypeManagerNotification, entity.TypeOtherNotification:
		if kudos == nil {
			return nil, ErrMissingKudosContext
		}
		recipients := strings.Join(kudos.RecipientNames(), ", ")
		var greeting string
		if n.Type == entity.TypeManagerNotification {
			greeting = fmt.Sprintf("Hey <@%s>! Your team member %s received kudos from *%s*! :star:", slackUserID, recipients, kudos.GiverName)
		} else {
			greeting = fmt.Sprintf("Hey <@%s>! You should know %s received kudos from *%s*! :star:", slackUserID, recipients, kudos.GiverName)
		}
		msg.Blocks = append(msg.Blocks,
			sectionBlock(greeting),
			fieldsBlock(fmt.Sprintf("*Category:*\n%s", kudos.CategoryName)),
		)
		appendKudosDetails(msg, kudos)

	case entity.TypeWeeklyReminder:
		if stats == nil {
			return nil, ErrMissingStats
		}
		msg.Blocks = append(msg.Blocks,
			sectionBlock(fmt.Sprintf(
				"Hey <@%s>! 👋\nThis is your weekly reminder to recognize your colleagues' contributions! Taking a moment to appreciate others can make a big difference in creating a positive work environment.\n\n🌟 <%s/give-kudos|Click here> to give kudos to someone!",
				slackUserID, cfg.AppURL)),
			sectionBlock("*Your Activity This Week:*"),
			fieldsBlock(
				fmt.Sprintf("*Kudos Received:*\n%d", stats.KudosReceived),
				fmt.Sprintf("*Kudos Given:*\n%d", stats.KudosGiven),
			),
			fieldsBlock(
				fmt.Sprintf("*Your Position:*\n#%d", stats.Rank),
				fmt.Sprintf("*Total Points:*\n%d", stats.TotalPoints),
			),
		)
		if stats.TopCategory != entity.NoTopCategory {
			msg.Blocks = append(msg.Blocks,
				sectionBlock(fmt.Sprintf("*Your Most Active Category:*\n%s", stats.TopCategory)))
		}
		msg.Blocks = append(msg.Blocks,
			sectionBlock(fmt.Sprintf("*Current Leader:*\n%s", stats.Leader)))

	case entity.TypeAccessRequest:
		text := "No message provided"
		if n.Message != nil && *n.Message != "" {
			text = *n.Message
		}
		msg.Blocks = append(msg.Blocks, sectionBlock(text))

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, n.Type)
	}

	// All kudos-linked notifications get a trailing "view online" link.
	if n.KudosID != nil {
		msg.Blocks = append(msg.Blocks,
			contextBlock(fmt.Sprintf("View on Kudos: %s/kudos/%s", cfg.AppURL, *n.KudosID)))
	}

	return msg, nil
}

// appendKudosDetails adds the optional free-text message and GIF blocks
// shared by all kudos-linked Slack layouts.
func appendKudosDetails(msg *SlackMessage, kudos *entity.KudosContext) {
	if kudos.Message != nil && *kudos.Message != "" {
		msg.Blocks = append(msg.Blocks,
			sectionBlock(fmt.Sprintf("*Message:*\n%s", *kudos.Message)))
	}
	if kudos.GifURL != nil && *kudos.GifURL != "" {
		msg.Blocks = append(msg.Blocks, imageBlock(*kudos.GifURL, "Kudos GIF"))
	}
}
