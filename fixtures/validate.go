package fixtures

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateOrder checks an order against the rules the service is expected to
// enforce: a customer, at least one item, quantity > 0 and price >= 0.
func ValidateOrder(order Order) error {
	err := validate.Struct(order)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid order: %s", strings.Join(msgs, "; "))
}
