package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	cases := []struct {
		event    Event
		severity string
	}{
		{EventCreated, SeverityInfo},
		{EventCorrected, SeverityWarning},
		{EventApproved, SeveritySuccess},
		{EventRejected, SeverityError},
		{EventResubmitted, SeverityInfo},
		{EventDocumentGenerated, SeveritySuccess},
		{EventReminder, SeverityWarning},
	}

	for _, tc := range cases {
		msg, err := Render(tc.event, Params{ConvenioTitle: "Marco UNI"})
		require.NoError(t, err, tc.event)
		assert.Equal(t, tc.severity, msg.Severity, tc.event)
		assert.NotEmpty(t, msg.Title, tc.event)
		assert.Contains(t, msg.Message, "Marco UNI", tc.event)
	}
}

func TestRender_CorrectionIncludesComment(t *testing.T) {
	msg, err := Render(EventCorrected, Params{ConvenioTitle: "X", Comment: "falta firma"})
	require.NoError(t, err)
	assert.Contains(t, msg.Message, "falta firma")
}

func TestRender_Custom(t *testing.T) {
	msg, err := Render(EventCustom, Params{Title: "Hola", Message: "Mensaje"})
	require.NoError(t, err)
	assert.Equal(t, Message{"Hola", "Mensaje", SeverityInfo}, msg)
}

func TestRender_Unknown(t *testing.T) {
	_, err := Render(Event("nope"), Params{})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
