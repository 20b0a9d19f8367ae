package entity

// Issuer representa al emisor del documento (normalmente la propia empresa).
type Issuer struct {
	Name    string `json:"name"`
	Zip     string `json:"zip"`
	Address string `json:"address"`
	Tel     string `json:"tel"`
	RegNo   string `json:"reg_no"` // número de registro de factura cualificada: T + 13 dígitos
}

// Client representa a la contraparte (destinatario).
type Client struct {
	Name      string `json:"name"`
	Honorific string `json:"honorific"` // 御中, 様, 殿 o vacío
	Zip       string `json:"zip"`
	Address   string `json:"address"`
}

// Tratamientos admitidos para el destinatario.
const (
	HonorificOnchu = "御中"
	HonorificSama  = "様"
	HonorificDono  = "殿"
)

// Bank datos de la cuenta de abono (solo presupuesto y factura).
type Bank struct {
	Name   string `json:"name"`
	Type   string `json:"type"` // 普通 / 当座
	Number string `json:"number"`
	Holder string `json:"holder"`
}

// Tipos de cuenta.
const (
	AccountTypeOrdinary = "普通"
	AccountTypeChecking = "当座"
)

// FooterTerms pie de cláusulas especiales simplificadas (簡易特約).
type FooterTerms struct {
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
}

func (i Issuer) IsEmpty() bool { return i == Issuer{} }

func (c Client) IsEmpty() bool { return c == Client{} }

// AsClient traslada los datos de dirección del emisor al hueco de destinatario.
// Teléfono y número de registro no tienen hueco en Client y se pierden.
func (i Issuer) AsClient() Client {
	return Client{Name: i.Name, Zip: i.Zip, Address: i.Address}
}

// AsIssuer hace la operación inversa.
func (c Client) AsIssuer() Issuer {
	return Issuer{Name: c.Name, Zip: c.Zip, Address: c.Address}
}

// MergeIssuer completa base con los campos no vacíos de over.
func MergeIssuer(base, over Issuer) Issuer {
	out := base
	if over.Name != "" {
		out.Name = over.Name
	}
	if over.Zip != "" {
		out.Zip = over.Zip
	}
	if over.Address != "" {
		out.Address = over.Address
	}
	if over.Tel != "" {
		out.Tel = over.Tel
	}
	if over.RegNo != "" {
		out.RegNo = over.RegNo
	}
	return out
}
