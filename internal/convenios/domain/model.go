package domain

import "time"

// Agreement statuses.
const (
	StatusDraft              = "borrador"
	StatusSubmitted          = "enviado"
	StatusInReview           = "revision"
	StatusModificationReview = "revision_modificacion"
	StatusApproved           = "aprobado"
	StatusRejected           = "rechazado"
	StatusArchived           = "archivado"
)

// Convenio is one cooperation agreement. It is never hard deleted, only archived.
type Convenio struct {
	ID           string     `json:"id"`
	SerialNumber int64      `json:"serial_number"`
	Title        string     `json:"title"`
	TypeID       string     `json:"convenio_type_id"`
	Status       string     `json:"status"`
	OwnerID      string     `json:"user_id"`
	ReviewerID   *string    `json:"reviewer_id,omitempty"`
	Content      FormData   `json:"content"`
	FileURL      *string    `json:"document_url,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AgreementType is read-only reference data seeded by administrators.
type AgreementType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Template    Template  `json:"template"`
	CreatedAt   time.Time `json:"created_at"`
}

// TypeRef is the `{id, name}` answer of the slug lookup.
type TypeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Template is the structured text an agreement type is rendered from.
// Any string may contain {field} placeholders.
type Template struct {
	Title    string   `json:"title" yaml:"title"`
	Subtitle string   `json:"subtitle,omitempty" yaml:"subtitle"`
	Parties  []string `json:"parties,omitempty" yaml:"parties"`
	Recitals []string `json:"recitals,omitempty" yaml:"recitals"`
	Clauses  []Clause `json:"clauses,omitempty" yaml:"clauses"`
	Closing  string   `json:"closing,omitempty" yaml:"closing"`
}

type Clause struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

type Observation struct {
	ID         string    `json:"id"`
	ConvenioID string    `json:"convenio_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	Resolved   bool      `json:"resolved"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListFilter narrows admin listings. Empty fields match everything.
type ListFilter struct {
	Statuses []string
	TypeID   string
	OwnerID  string
}
