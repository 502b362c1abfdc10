// Package alerts administra la configuración de alertas por empresa, sus eventos
// y el escaneo que los genera (stock bajo mínimo y créditos vencidos).
package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

// UseCase casos de uso de alertas.
type UseCase struct {
	uow   repository.UnitOfWork
	repos repository.Set
	clock ports.Clock
	log   zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(uow repository.UnitOfWork, repos repository.Set, clock ports.Clock, log zerolog.Logger) *UseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &UseCase{uow: uow, repos: repos, clock: clock, log: log}
}

// GetConfig configuración vigente de la empresa.
func (uc *UseCase) GetConfig(ctx context.Context, empresaID string) ([]*entity.AlertConfig, error) {
	list, err := uc.repos.Alerts.ListConfig(ctx, empresaID)
	if err != nil {
		return nil, domain.Persistence("listar configuración de alertas", err)
	}
	if list == nil {
		list = []*entity.AlertConfig{}
	}
	return list, nil
}

// ConfigInput una entrada de configuración. Los booleanos nil toman su valor por defecto.
type ConfigInput struct {
	TipoAlerta             string
	Nombre                 string
	Descripcion            string
	DiasAntesVencimiento   *int
	PeriodoSinRotacionDias *int
	EnviarApp              *bool
	EnviarEmail            *bool
	EnviarWhatsApp         *bool
	Activo                 *bool
}

// ReplaceConfig reemplaza toda la configuración de la empresa. Se valida todo antes de escribir.
func (uc *UseCase) ReplaceConfig(ctx context.Context, empresaID string, in []ConfigInput) ([]*entity.AlertConfig, error) {
	configs := make([]*entity.AlertConfig, 0, len(in))
	for _, c := range in {
		tipo := strings.ToUpper(strings.TrimSpace(c.TipoAlerta))
		if !validType(tipo) {
			return nil, domain.Validationf("tipo_alerta inválido: %s. Valores permitidos: %s",
				c.TipoAlerta, strings.Join(entity.AlertTypes, ", "))
		}
		nombre := strings.TrimSpace(c.Nombre)
		if nombre == "" {
			return nil, domain.Validation(`cada configuración debe tener "nombre"`)
		}
		configs = append(configs, &entity.AlertConfig{
			ID:                     uuid.NewString(),
			EmpresaID:              empresaID,
			TipoAlerta:             tipo,
			Nombre:                 nombre,
			Descripcion:            strings.TrimSpace(c.Descripcion),
			DiasAntesVencimiento:   c.DiasAntesVencimiento,
			PeriodoSinRotacionDias: c.PeriodoSinRotacionDias,
			EnviarApp:              boolOr(c.EnviarApp, true),
			EnviarEmail:            boolOr(c.EnviarEmail, false),
			EnviarWhatsApp:         boolOr(c.EnviarWhatsApp, false),
			Activo:                 boolOr(c.Activo, true),
		})
	}

	err := uc.uow.Run(ctx, func(tx repository.Set) error {
		if err := tx.Alerts.DeleteConfig(ctx, empresaID); err != nil {
			return domain.Persistence("eliminar configuración de alertas", err)
		}
		for _, c := range configs {
			if err := tx.Alerts.InsertConfig(ctx, c); err != nil {
				return domain.Persistence("insertar configuración de alertas", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.GetConfig(ctx, empresaID)
}

func validType(tipo string) bool {
	for _, t := range entity.AlertTypes {
		if t == tipo {
			return true
		}
	}
	return false
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// ListEvents eventos filtrados, más recientes primero.
func (uc *UseCase) ListEvents(ctx context.Context, empresaID string, f repository.AlertEventFilter) ([]*entity.AlertEvent, error) {
	f.TipoAlerta = strings.ToUpper(f.TipoAlerta)
	list, err := uc.repos.Alerts.ListEvents(ctx, empresaID, f)
	if err != nil {
		return nil, domain.Persistence("listar alertas", err)
	}
	if list == nil {
		list = []*entity.AlertEvent{}
	}
	return list, nil
}

// GetEvent evento por id.
func (uc *UseCase) GetEvent(ctx context.Context, empresaID, id string) (*entity.AlertEvent, error) {
	e, err := uc.repos.Alerts.GetEvent(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("consultar alerta", err)
	}
	if e == nil {
		return nil, domain.NotFound("alerta no encontrada")
	}
	return e, nil
}

// MarkRead marca el evento como leído. Un usuario que no es admin solo puede marcar
// eventos sin destinatario o dirigidos a él.
func (uc *UseCase) MarkRead(ctx context.Context, empresaID, usuarioID string, isAdmin bool, id string) (*entity.AlertEvent, error) {
	e, err := uc.GetEvent(ctx, empresaID, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && e.UsuarioDestinoID != nil && *e.UsuarioDestinoID != "" && *e.UsuarioDestinoID != usuarioID {
		return nil, domain.Forbidden("no tienes permisos para marcar esta alerta como leída")
	}
	ok, err := uc.repos.Alerts.MarkEventRead(ctx, empresaID, id, uc.clock.Now())
	if err != nil {
		return nil, domain.Persistence("marcar alerta como leída", err)
	}
	if !ok {
		return nil, domain.NotFound("alerta no encontrada")
	}
	return uc.GetEvent(ctx, empresaID, id)
}

// ScanResult resumen de un escaneo.
type ScanResult struct {
	EmpresaID string `json:"empresa_id"`
	Generados int    `json:"generados"`
	Omitidos  int    `json:"omitidos"`
}

// Scan genera eventos para las alertas activas de la empresa. Las fuentes se consultan en
// paralelo; un evento no leído con el mismo tipo y referencia no se duplica.
func (uc *UseCase) Scan(ctx context.Context, empresaID string) (*ScanResult, error) {
	configs, err := uc.GetConfig(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	active := make(map[string]*entity.AlertConfig, len(configs))
	for _, c := range configs {
		if c.Activo && c.EnviarApp {
			active[c.TipoAlerta] = c
		}
	}

	now := uc.clock.Now()
	var (
		lowStock     []*entity.StockView
		customerDebt []*entity.Sale
		supplierDebt []*entity.Purchase
	)
	g, gctx := errgroup.WithContext(ctx)
	if _, ok := active[entity.AlertaStockMinimo]; ok {
		g.Go(func() error {
			var err error
			lowStock, err = uc.repos.Stock.ListBelowMinimum(gctx, empresaID, "")
			return err
		})
	}
	if c, ok := active[entity.AlertaCreditoClienteVencido]; ok {
		g.Go(func() error {
			var err error
			customerDebt, err = uc.repos.Sales.ListCredits(gctx, empresaID, overdueFilter(c, now))
			return err
		})
	}
	if c, ok := active[entity.AlertaCreditoProveedorVencido]; ok {
		g.Go(func() error {
			var err error
			supplierDebt, err = uc.repos.Purchases.ListCredits(gctx, empresaID, overdueFilter(c, now))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.Persistence("consultar fuentes de alertas", err)
	}

	events := make([]*entity.AlertEvent, 0, len(lowStock)+len(customerDebt)+len(supplierDebt))
	for _, s := range lowStock {
		events = append(events, uc.stockEvent(empresaID, s, now))
	}
	for _, s := range customerDebt {
		events = append(events, uc.creditEvent(empresaID, entity.AlertaCreditoClienteVencido, entity.ReferenciaVenta,
			s.ID, s.SucursalID, "Crédito de cliente vencido",
			fmt.Sprintf("La venta #%s de %s venció el %s con saldo pendiente %s",
				s.ID, nonEmpty(s.ClienteNombre, "cliente"), dueDate(s.FechaVencimiento), s.SaldoPendiente.StringFixed(2)), now))
	}
	for _, p := range supplierDebt {
		events = append(events, uc.creditEvent(empresaID, entity.AlertaCreditoProveedorVencido, entity.ReferenciaCompra,
			p.ID, p.SucursalID, "Crédito de proveedor vencido",
			fmt.Sprintf("La compra #%s a %s venció el %s con saldo pendiente %s",
				p.ID, nonEmpty(p.ProveedorNombre, "proveedor"), dueDate(p.FechaVencimiento), p.SaldoPendiente.StringFixed(2)), now))
	}

	res := &ScanResult{EmpresaID: empresaID}
	for _, e := range events {
		created, err := uc.repos.Alerts.CreateEvent(ctx, e)
		if err != nil {
			return nil, domain.Persistence("crear alerta", err)
		}
		if created {
			res.Generados++
		} else {
			res.Omitidos++
		}
	}
	uc.log.Info().Str("empresa_id", empresaID).Int("generados", res.Generados).Int("omitidos", res.Omitidos).Msg("escaneo de alertas")
	return res, nil
}

// ScanAll escanea todas las empresas con alertas activas. Un fallo en una empresa no detiene las demás.
func (uc *UseCase) ScanAll(ctx context.Context) ([]*ScanResult, error) {
	empresas, err := uc.repos.Alerts.ListCompaniesWithActiveConfig(ctx)
	if err != nil {
		return nil, domain.Persistence("listar empresas con alertas", err)
	}
	out := make([]*ScanResult, 0, len(empresas))
	for _, id := range empresas {
		res, err := uc.Scan(ctx, id)
		if err != nil {
			uc.log.Error().Err(err).Str("empresa_id", id).Msg("escaneo de alertas falló")
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// overdueFilter con dias_antes_vencimiento el corte se adelanta esos días.
func overdueFilter(c *entity.AlertConfig, now time.Time) repository.CreditFilter {
	cut := now
	if c.DiasAntesVencimiento != nil && *c.DiasAntesVencimiento > 0 {
		cut = now.AddDate(0, 0, *c.DiasAntesVencimiento)
	}
	return repository.CreditFilter{Vencidos: true, Now: cut}
}

func (uc *UseCase) stockEvent(empresaID string, s *entity.StockView, now time.Time) *entity.AlertEvent {
	sucursal := s.SucursalID
	producto := s.ProductoID
	refTipo := "INVENTARIO"
	refID := s.SucursalID + ":" + s.ProductoID
	return &entity.AlertEvent{
		ID:             uuid.NewString(),
		EmpresaID:      empresaID,
		TipoAlerta:     entity.AlertaStockMinimo,
		Titulo:         "Stock bajo mínimo: " + nonEmpty(s.ProductoNombre, s.ProductoID),
		Mensaje:        fmt.Sprintf("%s tiene %s unidades, mínimo %s", nonEmpty(s.SucursalNombre, s.SucursalID), s.StockActual.String(), s.StockMinimo.String()),
		SucursalID:     &sucursal,
		ProductoID:     &producto,
		ReferenciaTipo: &refTipo,
		ReferenciaID:   &refID,
		CreatedAt:      now,
	}
}

func (uc *UseCase) creditEvent(empresaID, tipo, refTipo, refID, sucursalID, titulo, mensaje string, now time.Time) *entity.AlertEvent {
	sucursal := sucursalID
	return &entity.AlertEvent{
		ID:             uuid.NewString(),
		EmpresaID:      empresaID,
		TipoAlerta:     tipo,
		Titulo:         titulo,
		Mensaje:        mensaje,
		SucursalID:     &sucursal,
		ReferenciaTipo: &refTipo,
		ReferenciaID:   &refID,
		CreatedAt:      now,
	}
}

func dueDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006")
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
