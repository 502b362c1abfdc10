package ports

import "time"

// Clock provee la hora actual para movimientos sin fecha explícita (ajustes, traspasos).
type Clock interface {
	Now() time.Time
}

// SystemClock reloj del sistema.
type SystemClock struct{}

// Now hora actual.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock reloj fijo, útil en pruebas y reprocesos.
type FixedClock struct {
	T time.Time
}

// Now devuelve siempre T.
func (c FixedClock) Now() time.Time { return c.T }
