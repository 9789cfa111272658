package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/compras-api/internal/domain"
)

// requestValidator valida los DTO de entrada con las etiquetas validate. Los nombres de campo
// en los mensajes son los de json (o query), no los del struct.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &requestValidator{v: v}
}

// Struct devuelve un domain.Validation con todos los campos inválidos, o nil.
func (rv *requestValidator) Struct(s any) error {
	err := rv.v.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.Validation("datos inválidos", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldPath(fe)+": "+fieldMessage(fe))
	}
	return domain.Validation(strings.Join(msgs, "; "), nil)
}

// fieldPath quita el nombre del struct raíz: "detalles[0].cantidad".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "min":
		if k := fe.Kind(); k == reflect.Slice || k == reflect.String {
			return "debe tener al menos " + fe.Param() + " elemento(s)"
		}
		return "debe ser mayor o igual a " + fe.Param()
	case "max":
		return "debe ser menor o igual a " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "datetime":
		return "debe tener formato YYYY-MM-DD"
	default:
		return "valor inválido"
	}
}
