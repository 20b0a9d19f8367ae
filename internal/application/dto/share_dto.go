package dto

import "encoding/json"

// ShareEncodeRequest body para POST /api/share/encode. BaseURL es opcional.
type ShareEncodeRequest struct {
	Document json.RawMessage `json:"document" validate:"required"`
	BaseURL  string          `json:"base_url" validate:"omitempty,url"`
}

// ShareEncodeResponse token y enlace completo.
type ShareEncodeResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// ShareDecodeRequest body para POST /api/share/decode: un token o un enlace completo.
type ShareDecodeRequest struct {
	Token string `json:"token" validate:"required_without=URL"`
	URL   string `json:"url"`
}

// PostalResponse dirección encontrada para un código postal.
type PostalResponse struct {
	Zip     string `json:"zip"`
	Address string `json:"address"`
}
