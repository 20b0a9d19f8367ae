package postal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/pkg/jpfmt"
	"github.com/jhoicas/chouhyo/pkg/logger"
)

// ZipCloudClient adaptador de búsqueda de direcciones contra la API pública de zipcloud.
// Las consultas simultáneas del mismo código se agrupan en una sola llamada.
type ZipCloudClient struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group
	log        *logger.Logger
}

// NewZipCloudClient construye el adaptador. baseURL suele ser
// "https://zipcloud.ibsnet.co.jp/api/search".
func NewZipCloudClient(baseURL string, timeout time.Duration, log *logger.Logger) *ZipCloudClient {
	if log == nil {
		log = logger.Nop()
	}
	return &ZipCloudClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.WithComponent("postal"),
	}
}

// ── Protocolo zipcloud ────────────────────────────────────────────────────────

type zipCloudResponse struct {
	Status  int              `json:"status"`
	Message *string          `json:"message"`
	Results []zipCloudResult `json:"results"`
}

type zipCloudResult struct {
	Address1 string `json:"address1"` // prefectura
	Address2 string `json:"address2"` // municipio
	Address3 string `json:"address3"` // barrio
	Zipcode  string `json:"zipcode"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// NormalizeZip pliega dígitos de ancho completo y quita guiones; exige 7 dígitos.
func NormalizeZip(zip string) (string, error) {
	digits := jpfmt.Digits(zip)
	if len(digits) != 7 {
		return "", fmt.Errorf("postal: %q: %w", zip, domain.ErrInvalidPostalCode)
	}
	return digits, nil
}

// Lookup devuelve la dirección completa (prefectura + municipio + barrio) del código.
// domain.ErrNotFound si el código no existe.
func (c *ZipCloudClient) Lookup(ctx context.Context, zip string) (string, error) {
	code, err := NormalizeZip(zip)
	if err != nil {
		return "", err
	}

	ch := c.group.DoChan(code, func() (interface{}, error) {
		// La llamada compartida no depende del contexto del primer llamante.
		return c.fetch(context.WithoutCancel(ctx), code)
	})
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("postal: timeout o cancelación: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *ZipCloudClient) fetch(ctx context.Context, code string) (string, error) {
	endpoint := c.baseURL + "?zipcode=" + url.QueryEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("postal: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("postal: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("postal: leer respuesta: %w", err)
	}
	c.log.Debug().Str("zip", code).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("consulta zipcloud")

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("postal: zipcloud HTTP %d", resp.StatusCode)
	}

	var body zipCloudResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("postal: deserializar respuesta: %w", err)
	}
	if body.Status != http.StatusOK {
		msg := ""
		if body.Message != nil {
			msg = *body.Message
		}
		return "", fmt.Errorf("postal: zipcloud status %d: %s", body.Status, msg)
	}
	if len(body.Results) == 0 {
		return "", fmt.Errorf("postal: %s: %w", code, domain.ErrNotFound)
	}

	r := body.Results[0]
	return r.Address1 + r.Address2 + r.Address3, nil
}
