package checkout

import (
	"strings"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/validation"
)

// Contact is the customer part of the checkout form.
type Contact struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Notes         string `json:"notes"`
	PaymentMethod string `json:"payment_method"`
}

func ValidateContact(c Contact) validation.FieldErrors {
	errs := validation.FieldErrors{}
	if msg := validation.ValidateFullName(c.FullName); msg != "" {
		errs["full_name"] = msg
	}
	if msg := validation.ValidatePhone(c.Phone); msg != "" {
		errs["phone"] = msg
	}
	if msg := validation.ValidateMaxLen("Ghi chú", c.Notes, validation.TextMaxLen); msg != "" {
		errs["notes"] = msg
	}
	switch c.PaymentMethod {
	case models.PaymentMethodCash, models.PaymentMethodBankTransfer:
	default:
		errs["payment_method"] = "Vui lòng chọn phương thức thanh toán"
	}
	return errs
}

// BuildOrderRequest splits cart lines into products and services by the
// svc- id prefix.
func BuildOrderRequest(c Contact, items []models.CartItem) models.OrderRequest {
	req := models.OrderRequest{
		FullName:      strings.TrimSpace(c.FullName),
		Address:       strings.TrimSpace(c.Address),
		Phone:         strings.TrimSpace(c.Phone),
		Notes:         c.Notes,
		PaymentMethod: c.PaymentMethod,
		Products:      []models.OrderProductLine{},
		Services:      []models.OrderServiceLine{},
	}
	for _, it := range items {
		if it.IsService() {
			req.Services = append(req.Services, models.OrderServiceLine{
				ServiceID:   it.ServiceID(),
				Quantity:    it.Quantity,
				BookingDate: it.BookingDate,
			})
			continue
		}
		req.Products = append(req.Products, models.OrderProductLine{
			ProductID: it.ID,
			Quantity:  it.Quantity,
		})
	}
	return req
}
