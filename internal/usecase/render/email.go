package render

import (
	"fmt"

	"kudos-dispatch/internal/domain/entity"
)

// Email renders a notification into a subject plus HTML body. user is the
// recipient, kudos is present for kudos-linked types and stats for
// weekly_reminder. Combinations outside the enumerated types fall back to
// a generic "you have a notification" email linking to the app root; the
// fallback is a safety net and is not reachable for well-formed records.
func Email(n *entity.NotificationRecord, user *entity.UserContext, kudos *entity.KudosContext, stats *entity.WeeklyStats, cfg Config) (*EmailContent, error) {
	switch {
	case n.Type == entity.TypeWeeklyReminder:
		if stats == nil {
			return nil, ErrMissingStats
		}
		return weeklyReminderEmail(user, stats, cfg), nil

	case n.Type == entity.TypeAccessRequest:
		message := ""
		if n.Message != nil {
			message = *n.Message
		}
		return &EmailContent{
			Subject: "Feedback from Kudos",
			HTML: fmt.Sprintf(`
        <div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
          <h2>Kudos Feedback</h2>
          <p>%s</p>
          <p style="margin-top: 24px; color: #6B7280; font-size: 14px;">
            You're receiving this email because you are an admin for the <a href="%s">Kudos app</a>.
          </p>
        </div>
      `, message, cfg.AppURL),
		}, nil

	case kudos != nil:
		return kudosEmail(n.Type, kudos, cfg)

	default:
		return &EmailContent{
			Subject: "Kudos Notification",
			HTML: fmt.Sprintf(`
        <div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
          <h2>Kudos Notification</h2>
          <p>You have a new notification from Kudos.</p>
          <a href="%s"
              style="display: inline-block; background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px;">
            View Kudos
          </a>
        </div>
      `, cfg.AppURL),
		}, nil
	}
}

// kudosEmail builds the three kudos-linked variants. They share the same
// card layout; only subject and lead-in differ.
func kudosEmail(t entity.NotificationType, kudos *entity.KudosContext, cfg Config) (*EmailContent, error) {
	if !entity.IsValidType(t) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}

	message := ""
	if kudos.Message != nil {
		message = *kudos.Message
	}
	gif := ""
	if kudos.GifURL != nil && *kudos.GifURL != "" {
		gif = fmt.Sprintf(`<img src="%s" alt="Kudos GIF" style="max-width: 200px; border-radius: 4px;">`, *kudos.GifURL)
	}
	viewLink := fmt.Sprintf(`
            <a href="%s/kudos/%s"
               style="display: inline-block; background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px;">
              View Kudos
            </a>`, cfg.AppURL, kudos.ID)

	switch t {
	case entity.TypeKudosReceived:
		return &EmailContent{
			Subject: fmt.Sprintf("You received kudos from %s!", kudos.GiverName),
			HTML: fmt.Sprintf(`
          <div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
            <h2>You received kudos!</h2>
            <div style="background-color: #F3F4F6; padding: 20px; border-radius: 8px; margin: 20px 0;">
              <p style="color: #4F46E5; margin: 0 0 8px 0;">Category: %s</p>
              <p style="margin: 0 0 16px 0;">%s</p>
              %s
              <p style="color: #6B7280; margin: 16px 0 0 0;">From: %s</p>
            </div>%s
          </div>
        `, kudos.CategoryName, message, gif, kudos.GiverName, viewLink),
		}, nil

	case entity.TypeManagerNotification:
		recipients := JoinNames(kudos.RecipientNames())
		return &EmailContent{
			Subject: "Your team member received kudos!",
			HTML: fmt.Sprintf(`
          <div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
            <h2>Team Recognition Alert</h2>
            <p>%s received kudos from %s!</p>
            <div style="background-color: #F3F4F6; padding: 20px; border-radius: 8px; margin: 20px 0;">
              <p style="color: #4F46E5; margin: 0 0 8px 0;">Category: %s</p>
              <p style="margin: 0 0 16px 0;">%s</p>
              %s
            </div>%s
          </div>
        `, recipients, kudos.GiverName, kudos.CategoryName, message, gif, viewLink),
		}, nil

	default:
		recipients := JoinNames(kudos.RecipientNames())
		return &EmailContent{
			Subject: "Kudos Recognition Notification",
			HTML: fmt.Sprintf(`
          <div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
            <h2>Kudos Recognition Notification</h2>
            <p>%s received kudos from %s!</p>
            <div style="background-color: #F3F4F6; padding: 20px; border-radius: 8px; margin: 20px 0;">
              <p style="color: #4F46E5; margin: 0 0 8px 0;">Category: %s</p>
              <p style="margin: 0 0 16px 0;">%s</p>
              %s
            </div>%s
          </div>
        `, recipients, kudos.GiverName, kudos.CategoryName, message, gif, viewLink),
		}, nil
	}
}

// weeklyReminderEmail builds the weekly digest. The top-category card is
// omitted entirely when the aggregator reported the sentinel.
func weeklyReminderEmail(user *entity.UserContext, stats *entity.WeeklyStats, cfg Config) *EmailContent {
	name := ""
	if user != nil {
		name = user.Name
	}

	topCategoryCard := ""
	if stats.TopCategory != entity.NoTopCategory {
		topCategoryCard = fmt.Sprintf(`
                  <div style="text-align: center; padding: 16px; background-color: white; border-radius: 6px; box-shadow: 0 1px 2px 0 rgba(0, 0, 0, 0.05); margin-bottom: 16px;">
                    <div style="color: #6b7280; font-size: 14px;">
                      Most Active Category
                    </div>
                    <div style="font-size: 18px; font-weight: 600; color: #4f46e5;">
                      %s
                    </div>
                  </div>`, stats.TopCategory)
	}

	html := fmt.Sprintf(`
        <!DOCTYPE html>
        <html>
        <head>
          <meta charset="utf-8">
          <meta name="viewport" content="width=device-width, initial-scale=1.0">
          <title>Weekly Kudos Update</title>
        </head>
        <body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.5; color: #374151; margin: 0; padding: 0; background-color: #f3f4f6;">
          <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
            <div style="background-color: white; border-radius: 8px; padding: 32px; margin-bottom: 24px; box-shadow: 0 1px 3px 0 rgba(0, 0, 0, 0.1);">
              <h1 style="margin: 0 0 24px 0; color: #1f2937; font-size: 24px; font-weight: bold; text-align: center;">
                👋 Hello %s!
              </h1>

              <p style="margin: 0 0 24px 0; text-align: center; color: #6b7280;">
                This is your weekly reminder to recognize your colleagues' contributions! Taking a moment to appreciate others can make a big difference in creating a positive work environment.
              </p>

              <div style="margin-bottom: 32px; text-align: center;">
                <a href="%s/give-kudos"
                   style="display: inline-block; background-color: #4f46e5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: 500;">
                  Give Kudos Now
                </a>
              </div>

              <div style="background-color: #f9fafb; border-radius: 8px; padding: 24px; margin-bottom: 24px;">
                <h2 style="margin: 0 0 16px 0; color: #4f46e5; font-size: 18px; font-weight: 600;">
                  <a href="%s/my-kudos" style="color: inherit; text-decoration: none;">📊 Your Weekly Activity</a>
                </h2>

                <div style="display: grid; grid-template-columns: 1fr 1fr; gap: 16px; margin-bottom: 16px;">
                  <div style="text-align: center; padding: 16px; background-color: white; border-radius: 6px; box-shadow: 0 1px 2px 0 rgba(0, 0, 0, 0.05);">
                    <div style="font-size: 24px; font-weight: bold; color: #4f46e5;">
                      %d
                    </div>
                    <div style="color: #6b7280; font-size: 14px;">
                      Kudos Received
                    </div>
                  </div>

                  <div style="text-align: center; padding: 16px; background-color: white; border-radius: 6px; box-shadow: 0 1px 2px 0 rgba(0, 0, 0, 0.05);">
                    <div style="font-size: 24px; font-weight: bold; color: #4f46e5;">
                      %d
                    </div>
                    <div style="color: #6b7280; font-size: 14px;">
                      Kudos Given
                    </div>
                  </div>
                </div>%s
              </div>

              <div style="background-color: #f9fafb; border-radius: 8px; padding: 24px;">
                <h2 style="margin: 0 0 16px 0; color: #4f46e5; font-size: 18px; font-weight: 600;">
                  <a href="%s/leaderboard" style="color: inherit; text-decoration: none;">🏆 Leaderboard Update</a>
                </h2>

                <div style="display: grid; grid-template-columns: 1fr 1fr; gap: 16px; margin-bottom: 16px;">
                  <div style="text-align: center; padding: 16px; background-color: white; border-radius: 6px; box-shadow: 0 1px 2px 0 rgba(0, 0, 0, 0.05);">
                    <div style="font-size: 24px; font-weight: bold; color: #4f46e5;">
                      #%d
                    </div>
                    <div style="color: #6b7280; font-size: 14px;">
                      Your Position
                    </div>
                  </div>

                  <div style="text-align: center; padding: 16px; background-color: white; border-radius: 6px; box-shadow: 0 1px 2px 0 rgba(0, 0, 0, 0.05);">
                    <div style="font-size: 24px; font-weight: bold; color: #4f46e5;">
                      %d
                    </div>
                    <div style="color: #6b7280; font-size: 14px;">
                      Total Points
                    </div>
                  </div>
                </div>

                <div style="text-align: center; padding: 16px; background-color: white; border-radius: 6px; box-shadow: 0 1px 2px 0 rgba(0, 0, 0, 0.05);">
                  <div style="color: #6b7280; font-size: 14px;">
                    Current Leader
                  </div>
                  <div style="font-size: 18px; font-weight: 600; color: #4f46e5;">
                    %s
                  </div>
                </div>
              </div>
            </div>

            <div style="text-align: center; color: #6b7280; font-size: 12px;">
              <p>
                You're receiving this email because you've opted in to weekly updates from Kudos.
                <br>
                To update your notification preferences, visit your <a href="%s/settings" style="color: #4f46e5; text-decoration: none;">settings page</a>.
              </p>
            </div>
          </div>
        </body>
        </html>
      `,
		name, cfg.AppURL, cfg.AppURL,
		stats.KudosReceived, stats.KudosGiven, topCategoryCard,
		cfg.AppURL, stats.Rank, stats.TotalPoints, stats.Leader, cfg.AppURL)

	return &EmailContent{
		Subject: "🌟 Your Weekly Kudos Update",
		HTML:    html,
	}
}
