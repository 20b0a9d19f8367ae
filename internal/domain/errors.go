package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnknownDocumentType  = errors.New("tipo de documento desconocido")
	ErrInvalidShareToken    = errors.New("token de enlace compartido inválido")
	ErrCorruptedDraft       = errors.New("borrador corrupto")
	ErrInvalidPostalCode    = errors.New("el código postal debe tener 7 dígitos")
	ErrItemIndexOutOfRange  = errors.New("índice de línea fuera de rango")
	ErrNotInitialized       = errors.New("el espacio de trabajo no está inicializado")
	ErrUnsupportedOperation = errors.New("operación no soportada para este tipo de documento")
)
