// Package mirror copies locally submitted consumption events to the
// measurements sheet. Writes are best effort: failures are logged and counted,
// never retried and never reported to the submitter.
package mirror

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/infra/metrics"
	"github.com/gwind/medicoes/internal/measurement"
	"github.com/gwind/medicoes/internal/sheet"
)

var ErrNotConfigured = errors.New("measurements sheet not configured")

type SheetWriter interface {
	Configured() bool
	Columns(ctx context.Context, sheetID string) ([]sheet.Column, error)
	AppendRow(ctx context.Context, sheetID string, cells []sheet.CellWrite) (int64, error)
}

type Publisher struct {
	client  SheetWriter
	sheetID string
	timeout time.Duration
	builder *measurement.Builder
	log     *slog.Logger
	wg      sync.WaitGroup
}

func New(client SheetWriter, sheetID string, timeout time.Duration, log *slog.Logger) *Publisher {
	return &Publisher{
		client:  client,
		sheetID: sheetID,
		timeout: timeout,
		builder: measurement.NewBuilder(log),
		log:     log.With("component", "mirror"),
	}
}

// Publish writes ev in the background and returns immediately. mat may be nil.
func (p *Publisher) Publish(ev consumption.Event, mat *materials.Material) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Detached from the request: the response is already on its way.
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		_ = p.Write(ctx, &ev, mat)
	}()
}

// Wait blocks until every pending Publish has finished.
func (p *Publisher) Wait() { p.wg.Wait() }

// Write appends ev to the sheet synchronously. The returned error has already
// been logged.
func (p *Publisher) Write(ctx context.Context, ev *consumption.Event, mat *materials.Material) error {
	log := p.log.With("event_id", ev.ID)

	if p.sheetID == "" || !p.client.Configured() {
		metrics.MirrorWrites.WithLabelValues("not_configured").Inc()
		log.Info("measurements sheet not configured, event not mirrored")
		return ErrNotConfigured
	}

	cols, err := p.client.Columns(ctx, p.sheetID)
	if err != nil {
		metrics.MirrorWrites.WithLabelValues("failed").Inc()
		log.Error("read sheet columns", "err", err)
		return err
	}

	res := sheet.Resolve(cols, measurement.Rules)
	cells, err := p.builder.Build(ev, mat, res)
	if err != nil {
		metrics.MirrorWrites.WithLabelValues("aborted").Inc()
		if errors.Is(err, sheet.ErrDuplicateColumn) || errors.Is(err, sheet.ErrTooFewColumns) {
			log.Error("outbound row aborted", "kind", "integrity", "err", err)
		} else {
			log.Error("build outbound row", "err", err)
		}
		return err
	}

	rowID, err := p.client.AppendRow(ctx, p.sheetID, cells)
	if err != nil {
		metrics.MirrorWrites.WithLabelValues("failed").Inc()
		log.Error("append row", "err", err)
		return err
	}
	metrics.MirrorWrites.WithLabelValues("ok").Inc()
	log.Info("event mirrored", "row_id", rowID, "cells", len(cells))
	return nil
}
