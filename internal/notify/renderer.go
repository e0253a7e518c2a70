package notify

import (
	"strings"
	"text/template"

	"weatherguard/internal/types"
)

// alertSubjectPrefix is prepended to the intervention title.
const alertSubjectPrefix = "Weather Alert: "

var bodyTmpl = template.Must(template.New("alert").Parse(
	`{{.Title}}

{{.Description}}

This is an automated alert from the weather monitoring system. Please do not reply to this email.`))

// RenderedMessage is a fully rendered alert ready for an EmailProvider.
type RenderedMessage struct {
	Subject  string
	BodyText string
	BodyHTML string
}

// RenderAlert renders the subject and both body variants for an intervention.
// The HTML variant is the plaintext body with newlines turned into <br> tags;
// alert emails are deliberately plain.
func RenderAlert(iv types.Intervention) (RenderedMessage, error) {
	var b strings.Builder
	if err := bodyTmpl.Execute(&b, iv); err != nil {
		return RenderedMessage{}, types.NewAppError(types.ErrCodeInternalUnexpected,
			"rendering alert body", err)
	}
	text := b.String()

	return RenderedMessage{
		Subject:  alertSubjectPrefix + iv.Title,
		BodyText: text,
		BodyHTML: strings.ReplaceAll(text, "\n", "<br>"),
	}, nil
}
