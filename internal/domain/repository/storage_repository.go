package repository

import "context"

// Claves de almacenamiento local. Cada registro tiene su propio ciclo de vida:
// el borrador se borra con "documento nuevo", los perfiles sobreviven.
const (
	KeyDraft         = "chouhyo_current_draft_data"
	KeySelfProfile   = "chouhyo_user_profile_settings"
	KeyClientProfile = "chouhyo_client_profile"
	KeyBankProfile   = "chouhyo_bank_profile"
)

// Keys todas las claves gestionadas, en el orden en que se borran con ClearAll.
var Keys = []string{KeyDraft, KeySelfProfile, KeyClientProfile, KeyBankProfile}

// KeyValueStore almacenamiento local clave → bytes (el equivalente al localStorage del navegador).
type KeyValueStore interface {
	// Get devuelve domain.ErrNotFound si la clave no existe.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete no falla si la clave no existe.
	Delete(ctx context.Context, key string) error
}
