package slack

import (
	"fmt"
	"unicode/utf8"
)

const (
	maxDescriptionSize = 280
	ellipsis           = "..."
)

// SuccessMessage formats the notification of a created issue. Descriptions
// longer than 280 characters are shortened to 280 characters, ellipsis included.
func SuccessMessage(issueKey, issueURL, title, description string) string {
	return fmt.Sprintf("✅ Issue created successfully: <%s|%s>\n*Title:* %s\n*Description:* %s",
		issueURL, issueKey, title, TruncateDescription(description))
}

// ErrorMessage formats the notification of a failed submission
func ErrorMessage(errMsg string) string {
	return fmt.Sprintf("❌ Failed to create issue in Jira: %s", errMsg)
}

func TruncateDescription(description string) string {
	if utf8.RuneCountInString(description) <= maxDescriptionSize {
		return description
	}
	runes := []rune(description)
	return string(runes[:maxDescriptionSize-len(ellipsis)]) + ellipsis
}
