package respond

import (
	"regexp"
)

var (
	// Slack ボットトークンのパターン (xoxb-, xoxp- など)
	slackTokenPattern = regexp.MustCompile(`xox[baprs]-[a-zA-Z0-9-]+`)
	// SendGrid API キーのパターン (SG.xxx.yyy)
	sendgridKeyPattern = regexp.MustCompile(`SG\.[a-zA-Z0-9_-]{10,}\.[a-zA-Z0-9_-]+`)

	// データベースパスワードパターン（DSN内）
	dbPasswordPattern = regexp.MustCompile(`://([^:]+):([^@]+)@`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	// 認証情報のマスク
	msg = slackTokenPattern.ReplaceAllString(msg, "xoxb-****")
	msg = sendgridKeyPattern.ReplaceAllString(msg, "SG.****")

	// DBパスワードのマスク
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
