package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout es el formato ISO (YYYY-MM-DD) usado en el enlace compartido y en el borrador.
const DateLayout = "2006-01-02"

// Date es una fecha civil sin hora ni zona. El valor cero significa "sin fecha".
type Date struct {
	t time.Time
}

// NewDate construye una fecha normalizada (admite días/meses fuera de rango, como time.Date).
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf toma año/mes/día de t en su propia zona.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate interpreta "YYYY-MM-DD". La cadena vacía produce la fecha cero.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("fecha %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate es ParseDate para literales conocidos (tests, valores por defecto).
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Time() time.Time { return d.t }

func (d Date) Year() int { return d.t.Year() }

func (d Date) Month() time.Month { return d.t.Month() }

func (d Date) Day() int { return d.t.Day() }

// String devuelve "YYYY-MM-DD" o "" para la fecha cero.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// AddDays suma días naturales.
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return DateOf(d.t.AddDate(0, 0, n))
}

// EndOfMonth devuelve el último día del mes desplazado offset meses.
// El día 0 del mes siguiente es el último del mes buscado.
func (d Date) EndOfMonth(offset int) Date {
	if d.IsZero() {
		return d
	}
	return NewDate(d.Year(), d.Month()+time.Month(offset)+1, 0)
}

// DayOfMonth devuelve el día day del mes desplazado offset meses.
func (d Date) DayOfMonth(offset, day int) Date {
	if d.IsZero() {
		return d
	}
	return NewDate(d.Year(), d.Month()+time.Month(offset), day)
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
