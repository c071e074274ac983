package domain

import (
	"errors"
	"fmt"
	"time"
)

// Event names the fixed set of things a user can be notified about.
type Event string

const (
	EventCreated           Event = "convenioCreated"
	EventCorrected         Event = "convenioCorrected"
	EventApproved          Event = "convenioApproved"
	EventRejected          Event = "convenioRejected"
	EventResubmitted       Event = "convenioResubmitted"
	EventDocumentGenerated Event = "documentGenerated"
	EventReminder          Event = "reminder"
	EventCustom            Event = "custom"
)

// Severity tags shown next to a notification.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

var (
	ErrUnknownEvent         = errors.New("unknown notification event")
	ErrNotificationNotFound = errors.New("notification not found")
)

type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	ConvenioID *string   `json:"convenio_id,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// Params fills the event templates. Title and Message are only used by EventCustom.
type Params struct {
	ConvenioTitle string
	Comment       string
	Title         string
	Message       string
	Severity      string
}

// Message is the rendered title/message/severity triple for an event.
type Message struct {
	Title    string
	Message  string
	Severity string
}

// Render maps an event to its title, message and severity.
func Render(event Event, p Params) (Message, error) {
	title := p.ConvenioTitle
	if title == "" {
		title = "sin título"
	}

	switch event {
	case EventCreated:
		return Message{"Convenio enviado", fmt.Sprintf("El convenio \"%s\" fue enviado para revisión.", title), SeverityInfo}, nil
	case EventCorrected:
		msg := fmt.Sprintf("El convenio \"%s\" requiere correcciones.", title)
		if p.Comment != "" {
			msg += " Observaciones: " + p.Comment
		}
		return Message{"Correcciones solicitadas", msg, SeverityWarning}, nil
	case EventApproved:
		return Message{"Convenio aprobado", fmt.Sprintf("El convenio \"%s\" fue aprobado.", title), SeveritySuccess}, nil
	case EventRejected:
		msg := fmt.Sprintf("El convenio \"%s\" fue rechazado.", title)
		if p.Comment != "" {
			msg += " Motivo: " + p.Comment
		}
		return Message{"Convenio rechazado", msg, SeverityError}, nil
	case EventResubmitted:
		return Message{"Convenio reenviado", fmt.Sprintf("El convenio \"%s\" fue corregido y reenviado.", title), SeverityInfo}, nil
	case EventDocumentGenerated:
		return Message{"Documento generado", fmt.Sprintf("Se generó el documento del convenio \"%s\".", title), SeveritySuccess}, nil
	case EventReminder:
		return Message{"Recordatorio", fmt.Sprintf("El convenio \"%s\" sigue pendiente.", title), SeverityWarning}, nil
	case EventCustom:
		severity := p.Severity
		if severity == "" {
			severity = SeverityInfo
		}
		return Message{p.Title, p.Message, severity}, nil
	default:
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
}
