package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Notifications.Create"); err != nil {
		return err
	}
	r.s.data.notifications = append(r.s.data.notifications, *n)
	return nil
}

func (r notificationRepo) UpdateStatus(_ context.Context, empresaID, id, estado string, errorDetalle *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Notifications.UpdateStatus"); err != nil {
		return err
	}
	for i, n := range r.s.data.notifications {
		if n.EmpresaID == empresaID && n.ID == id {
			r.s.data.notifications[i].Estado = estado
			r.s.data.notifications[i].ErrorDetalle = errorDetalle
			return nil
		}
	}
	return fmt.Errorf("notificación %s no existe", id)
}

func (r notificationRepo) GetByID(_ context.Context, empresaID, id string) (*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Notifications.GetByID"); err != nil {
		return nil, err
	}
	for _, n := range r.s.data.notifications {
		if n.EmpresaID == empresaID && n.ID == id {
			return &n, nil
		}
	}
	return nil, nil
}

func (r notificationRepo) List(_ context.Context, empresaID string, f repository.NotificationFilter) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Notifications.List"); err != nil {
		return nil, err
	}
	out := []*entity.Notification{}
	for i := len(r.s.data.notifications) - 1; i >= 0; i-- {
		n := r.s.data.notifications[i]
		if n.EmpresaID != empresaID ||
			(f.Estado != "" && n.Estado != f.Estado) ||
			(f.TipoDestinatario != "" && n.TipoDestinatario != f.TipoDestinatario) ||
			!inRange(n.FechaEnvio, f.Desde, f.Hasta) {
			continue
		}
		out = append(out, &n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FechaEnvio.After(out[j].FechaEnvio) })
	return out, nil
}

type alertRepo struct{ s *Store }

func (r alertRepo) ListConfig(_ context.Context, empresaID string) ([]*entity.AlertConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Alerts.ListConfig"); err != nil {
		return nil, err
	}
	out := []*entity.AlertConfig{}
	for _, c := range r.s.data.alertConfigs {
		if c.EmpresaID == empresaID {
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TipoAlerta < out[j].TipoAlerta })
	return out, nil
}

func (r alertRepo) DeleteConfig(_ context.Context, empresaID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Alerts.DeleteConfig"); err != nil {
		return err
	}
	kept := r.s.data.alertConfigs[:0:0]
	for _, c := range r.s.data.alertConfigs {
		if c.EmpresaID != empresaID {
			kept = append(kept, c)
		}
	}
	r.s.data.alertConfigs = kept
	return nil
}

func (r alertRepo) InsertConfig(_ context.Context, c *entity.AlertConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Alerts.InsertConfig"); err != nil {
		return err
	}
	r.s.data.alertConfigs = append(r.s.data.alertConfigs, *c)
	return nil
}

func (r alertRepo) CreateEvent(_ context.Context, e *entity.AlertEvent) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Alerts.CreateEvent"); err != nil {
		return false, err
	}
	for _, x := range r.s.data.alertEvents {
		if x.EmpresaID == e.EmpresaID && x.TipoAlerta == e.TipoAlerta && !x.Leida &&
			strVal(x.ReferenciaTipo) == strVal(e.ReferenciaTipo) && strVal(x.ReferenciaID) == strVal(e.ReferenciaID) {
			return false, nil
		}
	}
	r.s.data.alertEvents = append(r.s.data.alertEvents, *e)
	return true, nil
}

func (r alertRepo) GetEvent(_ context.Context, empresaID, id string) (*entity.AlertEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Alerts.GetEvent"); err != nil {
		return nil, err
	}
	for _, e := range r.s.data.alertEvents {
		if e.EmpresaID == empresaID && e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (r alertRepo) ListEvents(_ context.Context, empresaID string, f repository.AlertEventFilter) ([]*entity.AlertEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Alerts.ListEvents"); err != nil {
		return nil, err
	}
	out := []*entity.AlertEvent{}
	for i := len(r.s.data.alertEvents) - 1; i >= 0; i-- {
		e := r.s.data.alertEvents[i]
		if e.EmpresaID != empresaID ||
			(f.TipoAlerta != "" && e.TipoAlerta != f.TipoAlerta) ||
			(f.Leida != nil && e.Leida != *f.Leida) ||
			!inRange(e.CreatedAt, f.Desde, f.Hasta) {
			continue
		}
		out = append(out, &e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r alertRepo) MarkEventRead(_ context.Context, empresaID, id string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Alerts.MarkEventRead"); err != nil {
		return false, err
	}
	for i, e := range r.s.data.alertEvents {
		if e.EmpresaID == empresaID && e.ID == id {
			r.s.data.alertEvents[i].Leida = true
			r.s.data.alertEvents[i].FechaLeida = &at
			return true, nil
		}
	}
	return false, nil
}

func (r alertRepo) ListCompaniesWithActiveConfig(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Alerts.ListCompaniesWithActiveConfig"); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := []string{}
	for _, c := range r.s.data.alertConfigs {
		if c.Activo && !seen[c.EmpresaID] {
			seen[c.EmpresaID] = true
			out = append(out, c.EmpresaID)
		}
	}
	sort.Strings(out)
	return out, nil
}
