package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrPersistence  = errors.New("error de persistencia")
)

// Kind clasifica un error para que la capa HTTP decida el código de respuesta.
type Kind int

const (
	KindPersistence Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindForbidden:
		return "FORBIDDEN"
	default:
		return "PERSISTENCE"
	}
}

// Error es el error tipado que cruza la frontera de los casos de uso.
// Msg es legible por el usuario; Err (opcional) es la causa interna y no se expone.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg != "" {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is permite comparar contra los sentinels clásicos (errors.Is(err, domain.ErrNotFound)).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalidInput:
		return e.Kind == KindValidation
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrPersistence:
		return e.Kind == KindPersistence
	}
	return false
}

// Validation entrada mal formada, faltante o fuera de rango.
func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

// Validationf como Validation con formato.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound entidad inexistente o de otra empresa.
func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

// NotFoundf como NotFound con formato.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflict violación de regla de negocio (documento anulado, monto > saldo, inactivo).
func Conflict(msg string) error { return &Error{Kind: KindConflict, Msg: msg} }

// Conflictf como Conflict con formato.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden el actor no puede operar sobre el recurso.
func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Msg: msg} }

// Persistence envuelve una falla del almacenamiento. Si err ya es un *Error se devuelve tal cual.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindPersistence, Msg: op, Err: err}
}

// KindOf devuelve la clase del error. Un error sin tipo se considera de persistencia.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindPersistence
}

// Message devuelve el mensaje público del error (sin la causa interna).
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindPersistence && de.Msg != "" {
		return de.Msg
	}
	return ErrPersistence.Error()
}
