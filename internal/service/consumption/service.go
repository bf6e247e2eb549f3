package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/inventory"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/infra/metrics"
)

type MaterialFinder interface {
	FindByCode(ctx context.Context, code, project string) (*materials.Material, error)
}

type Ledger interface {
	Apply(ctx context.Context, ev *consumption.Event) (inventory.Outcome, error)
}

type Mirror interface {
	Publish(ev consumption.Event, mat *materials.Material)
}

// Submission is one consumption reported by a user.
type Submission struct {
	CodeItem string
	Quantity float64
	Project  string
	UserID   string
	consumption.Attributes
}

type Result struct {
	Event    consumption.Event
	Material *materials.Material
}

type service struct {
	finder       MaterialFinder
	ledger       Ledger
	mirror       Mirror
	log          *slog.Logger
	writeTimeout time.Duration
}

func NewConsumptionService(finder MaterialFinder, ledger Ledger, mirror Mirror, log *slog.Logger, writeTimeout time.Duration) *service {
	return &service{
		finder:       finder,
		ledger:       ledger,
		mirror:       mirror,
		log:          log.With("component", "consumption"),
		writeTimeout: writeTimeout,
	}
}

// Submit records sub, debits the stock of its material and mirrors the event
// to the sheet in the background. Without CodeItem a "no material" event is
// stored and nothing is debited.
func (svc *service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	const op = "consumption.service.Submit"

	sub.Project = strings.TrimSpace(sub.Project)
	sub.CodeItem = strings.TrimSpace(sub.CodeItem)
	log := svc.log.With("project", sub.Project, "code_item", sub.CodeItem)

	if sub.Project == "" {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%s: projeto is required: %w", op, consumption.ErrValidation)
	}
	if sub.CodeItem != "" && !(sub.Quantity > 0) {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%s: quantidadeConsumida must be > 0: %w", op, consumption.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.writeTimeout)
	defer cancel()

	ev := consumption.Event{
		Quantity:   sub.Quantity,
		Project:    sub.Project,
		Origin:     consumption.OriginManual,
		UserID:     strings.TrimSpace(sub.UserID),
		Attributes: sub.Attributes,
	}

	var mat *materials.Material
	if sub.CodeItem != "" {
		m, err := svc.finder.FindByCode(ctx, sub.CodeItem, sub.Project)
		if err != nil {
			if errors.Is(err, materials.ErrNotFound) {
				metrics.Submissions.WithLabelValues("not_found").Inc()
				return nil, fmt.Errorf("%s: %q: %w", op, sub.CodeItem, consumption.ErrMaterialNotFound)
			}
			metrics.Submissions.WithLabelValues("error").Inc()
			log.Error("find material", "err", err)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		mat = m
		ev.MaterialID = &m.ID
	}

	out, err := svc.ledger.Apply(ctx, &ev)
	if err != nil {
		metrics.Submissions.WithLabelValues("error").Inc()
		log.Error("apply consumption", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if mat != nil && out.Movement != nil {
		mat.CurrentStock = out.Movement.StockAfter
	}

	metrics.Submissions.WithLabelValues("ok").Inc()
	log.Info("consumption recorded", "event_id", ev.ID, "quantity", ev.Quantity)

	svc.mirror.Publish(ev, mat)
	return &Result{Event: ev, Material: mat}, nil
}
