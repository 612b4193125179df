package plate

// ErrorKind discriminates a failed parse. The zero value means success.
type ErrorKind string

const (
	InvalidFormat    ErrorKind = "INVALID_FORMAT"
	CountryNotFound  ErrorKind = "COUNTRY_NOT_FOUND"
	CategoryNotFound ErrorKind = "CATEGORY_NOT_FOUND"
)

const invalidFormatMessage = "Formato inválido. Debe ser un código de país de 2 letras o una patente completa en formato letra+3números+2letras+letra"

// Message returns the user-facing text for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case InvalidFormat:
		return invalidFormatMessage
	case CountryNotFound:
		return "Código de país no encontrado"
	case CategoryNotFound:
		return "Categoría no encontrada"
	default:
		return ""
	}
}

// ParseError is the error form of a failed ParseResult.
type ParseError struct {
	Kind  ErrorKind
	Input string
}

func (e *ParseError) Error() string {
	return e.Kind.Message()
}

// Is matches the package sentinels by kind, whatever the input was.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidFormat    = &ParseError{Kind: InvalidFormat}
	ErrCountryNotFound  = &ParseError{Kind: CountryNotFound}
	ErrCategoryNotFound = &ParseError{Kind: CategoryNotFound}
)
