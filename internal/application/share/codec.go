// Package share codifica un documento completo en un token apto para el fragmento de una URL,
// de modo que el enlace lleva el estado sin que el servidor lo vea.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/domain/doctype"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
)

// FragmentKey nombre del parámetro en el fragmento: https://host/app#data=<token>.
const FragmentKey = "data"

// maxTokenLen límite defensivo del token aceptado (≈ 192 KiB de JSON).
const maxTokenLen = 256 * 1024

// Codec codificador/decodificador del enlace compartido.
type Codec struct {
	now func() time.Time
}

// NewCodec construye el codec. now fija la fecha por defecto de los campos ausentes; nil = time.Now.
func NewCodec(now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{now: now}
}

// Encode serializa el documento completo a base64url sin relleno.
func (c *Codec) Encode(doc entity.Document) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("share: serializar documento: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ShareURL incrusta el token como fragmento (nunca como query) de base.
func (c *Codec) ShareURL(base string, doc entity.Document) (string, error) {
	token, err := c.Encode(doc)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("share: URL base %q: %w", base, domain.ErrInvalidInput)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String() + "#" + FragmentKey + "=" + token, nil
}

// TokenFromURL extrae el token del fragmento. La query se ignora a propósito.
func TokenFromURL(raw string) (string, bool) {
	_, frag, ok := strings.Cut(raw, "#")
	if !ok {
		return "", false
	}
	for _, part := range strings.Split(frag, "&") {
		if v, found := strings.CutPrefix(part, FragmentKey+"="); found && v != "" {
			return v, true
		}
	}
	return "", false
}

// Decode reconstruye el documento. Nunca entra en pánico: cualquier entrada inválida
// produce domain.ErrInvalidShareToken. Los campos desconocidos se ignoran y los
// ausentes toman el valor por defecto del tipo.
func (c *Codec) Decode(token string) (doc *entity.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("share: %w: %v", domain.ErrInvalidShareToken, r)
		}
	}()

	raw, err := decodeBase64(token)
	if err != nil {
		return nil, invalid(err)
	}
	doc, err = c.DecodeJSON(raw)
	if err != nil {
		return nil, invalid(err)
	}
	return doc, nil
}

// DecodeJSON aplica la misma lectura tolerante a JSON ya decodificado (el borrador local).
// Los errores envuelven domain.ErrInvalidInput.
func (c *Codec) DecodeJSON(raw []byte) (*entity.Document, error) {
	var head map[string]json.RawMessage
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	// "null" se decodifica sin error a un mapa nil.
	if head == nil {
		return nil, fmt.Errorf("%w: se esperaba un objeto JSON", domain.ErrInvalidInput)
	}
	typ := entity.TypeInvoice
	if t, ok := head["type"]; ok {
		if err := json.Unmarshal(t, &typ); err != nil {
			return nil, fmt.Errorf("%w: type: %v", domain.ErrInvalidInput, err)
		}
	}

	base, err := doctype.NewDocument(typ, c.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	// Sin líneas en el JSON no se hereda la línea vacía por defecto.
	base.Items = nil

	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&base); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if base.Items == nil {
		base.Items = []entity.Item{}
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &base, nil
}

func invalid(err error) error {
	return fmt.Errorf("share: %w: %v", domain.ErrInvalidShareToken, err)
}

// decodeBase64 acepta base64url sin relleno (formato propio) y base64 estándar con
// relleno (enlaces generados por btoa), también con el fragmento escapado en %XX.
func decodeBase64(token string) ([]byte, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token vacío")
	}
	if len(token) > maxTokenLen {
		return nil, fmt.Errorf("token demasiado largo (%d bytes)", len(token))
	}
	if strings.Contains(token, "%") {
		if unescaped, err := url.PathUnescape(token); err == nil {
			token = unescaped
		}
	}
	encodings := []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(token)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
