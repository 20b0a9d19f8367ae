// Package jpfmt reúne el formato japonés de importes, fechas, códigos postales y texto.
package jpfmt

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

var printer = message.NewPrinter(language.Japanese)

// CivilDate es cualquier fecha sin hora que sepa si está vacía.
type CivilDate interface {
	IsZero() bool
	Year() int
	Month() time.Month
	Day() int
}

// Number agrupa por miles: 1234567 → "1,234,567".
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// Yen antepone el símbolo: 1234 → "¥1,234".
func Yen(n int64) string {
	return "¥" + Number(n)
}

// Date "2025年1月15日"; la fecha cero se imprime como "—".
func Date(d CivilDate) string {
	if d.IsZero() {
		return "—"
	}
	return fmt.Sprintf("%d年%d月%d日", d.Year(), int(d.Month()), d.Day())
}

// DateSlash "2025/1/15", la forma corta de la orden de compra y el recibo.
func DateSlash(d CivilDate) string {
	if d.IsZero() {
		return "—"
	}
	return fmt.Sprintf("%d/%d/%d", d.Year(), int(d.Month()), d.Day())
}

// Fold convierte dígitos y letras de ancho completo a ASCII y el katakana de medio ancho a ancho completo.
func Fold(s string) string {
	out, _, err := transform.String(width.Fold, s)
	if err != nil {
		return s
	}
	return out
}

// Digits pliega el ancho y deja solo los dígitos: "１２３-４５６７" → "1234567".
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, Fold(s))
}

// Zip "〒123-4567" para siete dígitos; cualquier otra entrada se devuelve con 〒 delante.
func Zip(zip string) string {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return ""
	}
	if d := Digits(zip); len(d) == 7 && len([]rune(zip)) <= 8 {
		return "〒" + d[:3] + "-" + d[3:]
	}
	if strings.HasPrefix(zip, "〒") {
		return zip
	}
	return "〒" + zip
}

// IsBlank indica si s no tiene más que espacios (incluido el espacio ideográfico).
func IsBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

// ShiftJIS envuelve w para escribir en Shift_JIS, la codificación que espera Excel en Japón.
// Los caracteres sin representación (emoji, variantes) se sustituyen.
func ShiftJIS(w io.Writer) io.WriteCloser {
	return transform.NewWriter(w, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
}
