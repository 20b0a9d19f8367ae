package workspace

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
	"github.com/jhoicas/chouhyo/pkg/jpfmt"
)

// Slot hueco de dirección al que va destinada una búsqueda.
type Slot string

const (
	SlotIssuer Slot = "issuer"
	SlotClient Slot = "client"
)

// LookupTask búsqueda de dirección en curso. Se resuelve una sola vez; Done se cierra al terminar.
type LookupTask struct {
	ID   uuid.UUID
	Slot Slot
	Zip  string

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	address string
	applied bool
	err     error
}

// Done se cierra cuando la búsqueda terminó (aplicada, descartada o fallida).
func (t *LookupTask) Done() <-chan struct{} { return t.done }

// Cancel aborta la búsqueda; el resultado, si llega, se descarta.
func (t *LookupTask) Cancel() { t.cancel() }

// Result dirección encontrada, si se aplicó al documento y el error. Válido tras Done.
func (t *LookupTask) Result() (address string, applied bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.address, t.applied, t.err
}

// Applied indica si la dirección llegó al documento.
func (t *LookupTask) Applied() bool {
	_, applied, _ := t.Result()
	return applied
}

func (t *LookupTask) finish(address string, applied bool, err error) {
	t.mu.Lock()
	t.address, t.applied, t.err = address, applied, err
	t.mu.Unlock()
	close(t.done)
}

// LookupAddress lanza la búsqueda del código postal en segundo plano. Una búsqueda nueva
// para el mismo hueco cancela la anterior. Al resolverse, la dirección solo se escribe si
// el campo sigue vacío en ese momento; si no, no pasa nada. Los fallos no se propagan:
// quedan en Result y en el log.
func (w *Workspace) LookupAddress(ctx context.Context, slot Slot, zip string) *LookupTask {
	tctx, cancel := context.WithCancel(ctx)
	task := &LookupTask{
		ID:     uuid.New(),
		Slot:   slot,
		Zip:    zip,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	w.mu.Lock()
	if prev, ok := w.lookups[slot]; ok {
		prev.cancel()
	}
	w.lookups[slot] = task
	w.mu.Unlock()

	if w.lookup == nil {
		w.resolve(tctx, task, "", domain.ErrUnsupportedOperation)
		return task
	}

	go func() {
		address, err := w.lookup.Lookup(tctx, zip)
		w.resolve(tctx, task, address, err)
	}()
	return task
}

func (w *Workspace) resolve(ctx context.Context, task *LookupTask, address string, err error) {
	defer task.cancel()

	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.lookups[task.Slot] == task
	if current {
		delete(w.lookups, task.Slot)
	}
	id := task.ID.String()

	switch {
	case !current || ctx.Err() != nil:
		w.log.Debug().Str("lookup_id", id).Msg("búsqueda reemplazada o cancelada, se descarta")
		task.finish(address, false, context.Canceled)
		return
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidPostalCode):
		w.log.Debug().Err(err).Str("lookup_id", id).Msg("código postal sin dirección")
		task.finish("", false, err)
		return
	case err != nil:
		w.log.Warn().Err(err).Str("lookup_id", id).Msg("búsqueda de dirección fallida")
		task.finish("", false, err)
		return
	case !w.ready:
		task.finish(address, false, domain.ErrNotInitialized)
		return
	case !addressEmpty(w.doc, task.Slot):
		w.log.Debug().Str("lookup_id", id).Msg("la dirección ya tiene valor, no se sobrescribe")
		task.finish(address, false, nil)
		return
	}

	applyErr := w.updateLocked(context.WithoutCancel(ctx), func(doc *entity.Document) error {
		setAddress(doc, task.Slot, address)
		return nil
	})
	// Si solo falló el guardado, la dirección ya está en la instantánea.
	applied := address != "" && !addressEmpty(w.doc, task.Slot)
	task.finish(address, applied, applyErr)
}

func (w *Workspace) cancelLookupsLocked() {
	for slot, t := range w.lookups {
		t.cancel()
		delete(w.lookups, slot)
	}
}

func addressEmpty(doc entity.Document, slot Slot) bool {
	if slot == SlotClient {
		return jpfmt.IsBlank(doc.Client.Address)
	}
	return jpfmt.IsBlank(doc.Issuer.Address)
}

func setAddress(doc *entity.Document, slot Slot, address string) {
	if slot == SlotClient {
		doc.Client.Address = address
		return
	}
	doc.Issuer.Address = address
}
