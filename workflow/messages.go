package workflow

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/kova98/saletracker/api"
	"github.com/kova98/saletracker/models"
)

const (
	DefaultDeliveryNote = "3:23 PM"

	msgUpdateFailed   = "Error updating product link"
	msgScheduleFailed = "Error scheduling email"
	msgInvalidInput   = "Please check the form and try again"
)

// DisplayMessage is the server-provided message carried by err, or fallback.
func DisplayMessage(err error, fallback string) string {
	if msg, ok := api.MessageOf(err); ok {
		return msg
	}
	return fallback
}

func FormatSuccess(p models.ProductSnapshot, deliveryNote string) string {
	onSale := "No"
	if p.OnSale {
		onSale = "Yes"
	}

	var sb strings.Builder
	sb.WriteString("Email sent successfully!\n")
	sb.WriteString(fmt.Sprintf("Product: %s\n", p.Name))
	sb.WriteString(fmt.Sprintf("Price: %s\n", p.Price))
	sb.WriteString(fmt.Sprintf("On Sale: %s\n", onSale))
	sb.WriteString(fmt.Sprintf("You will receive daily updates at %s.", deliveryNote))
	return sb.String()
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return msgInvalidInput
	}

	// Report the first offending field, in form order.
	switch fieldErrs[0].Field() {
	case "RecipientEmail":
		return "Please enter a valid email address"
	case "ProductLink":
		return "Please enter a valid product link"
	}
	return msgInvalidInput
}
