package models

type UpdateProductLinkRequest struct {
	ProductLink string `json:"productLink"`
}

type ScheduleEmailRequest struct {
	RecipientEmail string `json:"recipient_email"`
}

type ScheduleEmailResponse struct {
	Product *ProductSnapshot `json:"product"`
}

// ErrorResponse is the failure body of every endpoint. Older servers put the
// text in "message" instead of "error".
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (r ErrorResponse) Text() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

// StatusResponse is the success body of the recipient and subscription mutations.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
