package dto

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	ceiPattern  = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)
	hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	nomePattern = regexp.MustCompile(`^[\p{L}\s'.-]+$`)
)

// ValidationError collects field -> messages for a 400 response.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError starts an empty collection.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError shortcut for a single failing field.
func FieldError(field, msg string) *ValidationError {
	v := NewValidationError()
	v.Add(field, msg)
	return v
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "dados inválidos: " + strings.Join(parts, ", ")
}

// Add appends a message for field.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field already failed.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// OrNil returns nil when nothing was collected.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var registerOnce sync.Once

// RegisterValidators installs the domain validation tags on gin's validator:
// cei, cpf, hhmm and nome.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("cei", func(fl validator.FieldLevel) bool {
			return ceiPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
			return ValidCPF(fl.Field().String())
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return hhmmPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("nome", func(fl validator.FieldLevel) bool {
			return nomePattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
	})
}

// ValidCEI reports whether s is formatted as NN.NNN.NNN/NNNN-NN.
func ValidCEI(s string) bool { return ceiPattern.MatchString(s) }

// ValidHHMM reports whether s is a 24h HH:MM time.
func ValidHHMM(s string) bool { return hhmmPattern.MatchString(s) }

// ValidNome reports whether s holds only letters and spaces.
func ValidNome(s string) bool { return nomePattern.MatchString(strings.TrimSpace(s)) }

// NormalizeCPF strips formatting, keeping digits only.
func NormalizeCPF(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF checks length and both check digits. Formatting is ignored.
func ValidCPF(s string) bool {
	cpf := NormalizeCPF(s)
	if len(cpf) != 11 {
		return false
	}
	if strings.Count(cpf, cpf[:1]) == 11 {
		return false
	}
	digit := func(n int) int {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(cpf[i]-'0') * (n + 1 - i)
		}
		r := sum * 10 % 11
		if r == 10 {
			r = 0
		}
		return r
	}
	return digit(9) == int(cpf[9]-'0') && digit(10) == int(cpf[10]-'0')
}

var tagMessages = map[string]string{
	"required": "campo obrigatório",
	"uuid":     "identificador inválido",
	"email":    "e-mail inválido",
	"min":      "valor abaixo do mínimo",
	"max":      "valor acima do máximo",
	"oneof":    "valor não permitido",
	"datetime": "data inválida (use AAAA-MM-DD)",
	"cei":      "CEI deve seguir o formato 00.000.000/0000-00",
	"cpf":      "CPF inválido",
	"hhmm":     "horário inválido (use HH:MM)",
	"nome":     "deve conter apenas letras e espaços",
}

// FieldErrors converts a binding error into field -> messages. Errors that are
// not validator errors (malformed JSON, wrong types) land under "body".
func FieldErrors(err error) map[string][]string {
	out := make(map[string][]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = []string{"corpo da requisição inválido"}
		return out
	}
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "valor inválido"
		}
		out[field] = append(out[field], msg)
	}
	return out
}

// fieldPath drops the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
