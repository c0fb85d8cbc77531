package models

import "strings"

// SubmissionRequest is built from the form fields on every submit. The link
// is only required: the server decides which links it can track, and shoppers
// paste links without a scheme.
type SubmissionRequest struct {
	RecipientEmail string `validate:"required,email"`
	ProductLink    string `validate:"required"`
}

func NewSubmissionRequest(email, link string) SubmissionRequest {
	return SubmissionRequest{
		RecipientEmail: strings.TrimSpace(email),
		ProductLink:    strings.TrimSpace(link),
	}
}
