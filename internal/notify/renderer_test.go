package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherguard/internal/types"
)

func TestRenderAlert(t *testing.T) {
	msg, err := RenderAlert(types.Intervention{
		ID:          "high_wind_alert",
		Title:       "High Wind Alert",
		Description: "Secure loose equipment and postpone crane work.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Weather Alert: High Wind Alert", msg.Subject)
	assert.Contains(t, msg.BodyText, "High Wind Alert\n\nSecure loose equipment")
	assert.Contains(t, msg.BodyText, "automated alert")
	assert.NotContains(t, msg.BodyText, "<br>")
	assert.Contains(t, msg.BodyHTML, "High Wind Alert<br><br>Secure loose equipment")
}
