package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/joshuapare/memkit/mem/metrics"
)

// writeMetrics gathers src through a private registry and writes the text
// exposition format to w.
func writeMetrics(w io.Writer, src metrics.Source, name string) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCollector(src, name)); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
