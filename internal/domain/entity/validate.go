package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/chouhyo/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var regNoPattern = regexp.MustCompile(`^T\d{13}$`)

// ValidRegNo indica si el número de registro tiene la forma T + 13 dígitos.
func ValidRegNo(s string) bool {
	return regNoPattern.MatchString(s)
}

// Validate comprueba las invariantes de la línea: cantidad ≥ 1, precio ≥ 0, tasa 0/8/10.
func (it Item) Validate() error {
	if err := validate.Struct(it); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, describe(err))
	}
	return nil
}

// Validate comprueba las invariantes del documento. Los campos obligatorios para imprimir
// (nombres, número) no se exigen aquí: un borrador a medias es válido.
func (d Document) Validate() error {
	if d.Details == nil || !d.Type().Valid() {
		return fmt.Errorf("%w: sin tipo de documento", domain.ErrInvalidInput)
	}
	for i, it := range d.Items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s no cumple %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return strings.Join(parts, "; ")
}
