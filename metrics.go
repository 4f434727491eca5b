/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eavstore

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts companion writes and flushes. A nil *Metrics records nothing.
type Metrics struct {
	writes  *prometheus.CounterVec
	flushes *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg. Counters
// already registered by another Model are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eavstore",
		Name:      "companion_writes_total",
		Help:      "Companion row writes by entity type, store and operation.",
	}, []string{"entity_type", "store", "op"})
	flushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eavstore",
		Name:      "flushes_total",
		Help:      "Write buffer flushes by entity type and result.",
	}, []string{"entity_type", "result"})

	var err error
	if writes, err = register(reg, writes); err != nil {
		return nil, err
	}
	if flushes, err = register(reg, flushes); err != nil {
		return nil, err
	}
	return &Metrics{writes: writes, flushes: flushes}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) wrote(entityType, store, op string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(entityType, store, op).Inc()
}

func (m *Metrics) flushed(entityType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.flushes.WithLabelValues(entityType, result).Inc()
}
