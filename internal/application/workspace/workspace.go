// Package workspace es la sesión de edición de un documento: orden de carga, parches
// granulares, guardado automático de los registros locales y búsqueda de direcciones.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/chouhyo/internal/application/share"
	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/domain/doctype"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
	"github.com/jhoicas/chouhyo/internal/domain/repository"
	"github.com/jhoicas/chouhyo/internal/domain/transition"
	"github.com/jhoicas/chouhyo/pkg/logger"
)

// DefaultType tipo con el que arranca una sesión sin enlace ni borrador.
const DefaultType = entity.TypeInvoice

// AddressLookup puerto de búsqueda de direcciones por código postal.
type AddressLookup interface {
	Lookup(ctx context.Context, zip string) (string, error)
}

// Source origen del documento cargado.
type Source string

const (
	SourceURL      Source = "url"
	SourceDraft    Source = "draft"
	SourceDefaults Source = "defaults"
)

// Options dependencias del espacio de trabajo. Lookup y Now son opcionales.
type Options struct {
	Store  repository.KeyValueStore
	Codec  *share.Codec
	Lookup AddressLookup
	Logger *logger.Logger
	Now    func() time.Time
}

// Workspace mantiene la instantánea actual del documento. Cada mutación construye una
// copia, la valida, la sustituye bajo el mutex y guarda los registros locales.
type Workspace struct {
	mu      sync.Mutex
	store   repository.KeyValueStore
	codec   *share.Codec
	lookup  AddressLookup
	log     *logger.Logger
	now     func() time.Time
	doc     entity.Document
	ready   bool
	lookups map[Slot]*LookupTask
}

// New construye el espacio de trabajo. Hay que llamar a Load antes de mutar.
func New(opts Options) *Workspace {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Codec == nil {
		opts.Codec = share.NewCodec(opts.Now)
	}
	return &Workspace{
		store:   opts.Store,
		codec:   opts.Codec,
		lookup:  opts.Lookup,
		log:     opts.Logger.WithComponent("workspace"),
		now:     opts.Now,
		lookups: make(map[Slot]*LookupTask),
	}
}

// Document devuelve una copia de la instantánea actual.
func (w *Workspace) Document() entity.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc.Clone()
}

// ── Carga ─────────────────────────────────────────────────────────────────────

// Load aplica el orden de carga una sola vez:
//  1. token válido en el fragmento de rawURL (gana siempre al borrador);
//  2. borrador local (si está corrupto se borra y se sigue);
//  3. documento por defecto con el perfil propio, el del cliente y el banco.
func (w *Workspace) Load(ctx context.Context, rawURL string) (Source, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// 1. Enlace compartido
	if token, ok := share.TokenFromURL(rawURL); ok {
		doc, err := w.codec.Decode(token)
		if err == nil {
			w.doc, w.ready = *doc, true
			w.log.Info().Str("type", string(doc.Type())).Msg("documento cargado desde enlace compartido")
			return SourceURL, w.autosave(ctx, w.doc)
		}
		w.log.Warn().Err(err).Msg("enlace compartido inválido, se ignora")
	}

	// 2. Borrador
	doc, err := w.readDraft(ctx)
	switch {
	case err == nil:
		w.doc, w.ready = *doc, true
		w.log.Debug().Str("type", string(doc.Type())).Msg("borrador restaurado")
		return SourceDraft, nil
	case errors.Is(err, domain.ErrCorruptedDraft):
		w.log.Warn().Err(err).Msg("borrador corrupto descartado")
		if delErr := w.store.Delete(ctx, repository.KeyDraft); delErr != nil {
			return "", fmt.Errorf("workspace: borrar borrador corrupto: %w", delErr)
		}
	case !errors.Is(err, domain.ErrNotFound):
		return "", err
	}

	// 3. Valores por defecto
	def, err := w.defaults(ctx, DefaultType)
	if err != nil {
		return "", err
	}
	w.doc, w.ready = def, true
	return SourceDefaults, nil
}

func (w *Workspace) readDraft(ctx context.Context) (*entity.Document, error) {
	raw, err := w.store.Get(ctx, repository.KeyDraft)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("workspace: leer borrador: %w", err)
	}
	doc, err := w.codec.DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptedDraft, err)
	}
	return doc, nil
}

// defaults documento nuevo del tipo t con los registros guardados en su hueco.
func (w *Workspace) defaults(ctx context.Context, t entity.DocumentType) (entity.Document, error) {
	doc, err := doctype.NewDocument(t, w.now())
	if err != nil {
		return entity.Document{}, fmt.Errorf("workspace: %w", err)
	}
	self, err := w.readSelfProfile(ctx)
	if err != nil {
		return entity.Document{}, err
	}
	var counterparty entity.Client
	if _, err := w.readJSON(ctx, repository.KeyClientProfile, &counterparty); err != nil {
		return entity.Document{}, err
	}
	var bank entity.Bank
	hasBank, err := w.readJSON(ctx, repository.KeyBankProfile, &bank)
	if err != nil {
		return entity.Document{}, err
	}

	if doctype.SelfRole(t) == doctype.RoleClient {
		if self != nil {
			doc.Client = self.AsClient()
		}
		doc.Issuer = counterparty.AsIssuer()
	} else {
		if self != nil {
			doc.Issuer = *self
		}
		doc.Client = counterparty
	}
	if hasBank {
		doc.Bank = &bank
	}
	return doc, nil
}

// ── Guardado automático ───────────────────────────────────────────────────────

// autosave guarda el borrador completo y los registros persistentes según el rol:
// en la orden de compra la propia empresa está en el hueco del destinatario.
func (w *Workspace) autosave(ctx context.Context, doc entity.Document) error {
	if err := w.writeJSON(ctx, repository.KeyDraft, doc); err != nil {
		return err
	}

	var self entity.Issuer
	var counterparty entity.Client
	if doctype.SelfRole(doc.Type()) == doctype.RoleClient {
		saved, err := w.readSelfProfile(ctx)
		if err != nil {
			return err
		}
		base := entity.Issuer{}
		if saved != nil {
			base = *saved
		}
		self = entity.MergeIssuer(base, doc.Client.AsIssuer())
		counterparty = doc.Issuer.AsClient()
	} else {
		self = doc.Issuer
		counterparty = doc.Client
	}

	if err := w.writeJSON(ctx, repository.KeySelfProfile, self); err != nil {
		return err
	}
	// Un nombre vacío no pisa el cliente guardado.
	if counterparty.Name != "" {
		if err := w.writeJSON(ctx, repository.KeyClientProfile, counterparty); err != nil {
			return err
		}
	}
	if doc.Bank != nil {
		if err := w.writeJSON(ctx, repository.KeyBankProfile, doc.Bank); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workspace) readSelfProfile(ctx context.Context) (*entity.Issuer, error) {
	var p entity.Issuer
	ok, err := w.readJSON(ctx, repository.KeySelfProfile, &p)
	if err != nil || !ok || p.IsEmpty() {
		return nil, err
	}
	return &p, nil
}

// readJSON devuelve false si la clave no existe. Un registro ilegible se ignora con aviso.
func (w *Workspace) readJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := w.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("workspace: leer %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		w.log.Warn().Err(err).Str("key", key).Msg("registro local ilegible, se ignora")
		return false, nil
	}
	return true, nil
}

func (w *Workspace) writeJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("workspace: serializar %s: %w", key, err)
	}
	if err := w.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("workspace: guardar %s: %w", key, err)
	}
	return nil
}

// ── Mutaciones ────────────────────────────────────────────────────────────────

// Update aplica fn sobre una copia; si fn o la validación fallan, la instantánea no cambia.
// Un fallo del guardado se devuelve, pero la instantánea nueva ya está en memoria.
func (w *Workspace) Update(ctx context.Context, fn func(doc *entity.Document) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.updateLocked(ctx, fn)
}

func (w *Workspace) updateLocked(ctx context.Context, fn func(doc *entity.Document) error) error {
	if !w.ready {
		return domain.ErrNotInitialized
	}
	next := w.doc.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	w.doc = next
	return w.autosave(ctx, next)
}

// ChangeType convierte el documento al tipo to con el perfil guardado como semilla.
func (w *Workspace) ChangeType(ctx context.Context, to entity.DocumentType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	profile, err := w.readSelfProfile(ctx)
	if err != nil {
		return err
	}
	return w.updateLocked(ctx, func(doc *entity.Document) error {
		next, err := transition.Apply(*doc, to, profile)
		if err != nil {
			return err
		}
		*doc = next
		return nil
	})
}

// NewDocument descarta el borrador y empieza un documento del tipo t. Los perfiles se conservan.
func (w *Workspace) NewDocument(ctx context.Context, t entity.DocumentType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, err := w.defaults(ctx, t)
	if err != nil {
		return err
	}
	if err := w.store.Delete(ctx, repository.KeyDraft); err != nil {
		return fmt.Errorf("workspace: borrar borrador: %w", err)
	}
	w.cancelLookupsLocked()
	w.doc, w.ready = doc, true
	return nil
}

// ForgetClient borra el cliente guardado sin tocar el documento.
func (w *Workspace) ForgetClient(ctx context.Context) error {
	if err := w.store.Delete(ctx, repository.KeyClientProfile); err != nil {
		return fmt.Errorf("workspace: borrar cliente: %w", err)
	}
	return nil
}

// ClearAll borra los cuatro registros locales y vuelve al documento por defecto sin perfil.
func (w *Workspace) ClearAll(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, key := range repository.Keys {
		if err := w.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("workspace: borrar %s: %w", key, err)
		}
	}
	w.cancelLookupsLocked()
	doc, err := doctype.NewDocument(DefaultType, w.now())
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	w.doc, w.ready = doc, true
	return nil
}

// ShareURL enlace compartido del documento actual.
func (w *Workspace) ShareURL(base string) (string, error) {
	return w.codec.ShareURL(base, w.Document())
}
