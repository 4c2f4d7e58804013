package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type metricSample struct {
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
	Count  uint64            `json:"count,omitzero"`
}

func newMetricsCmd(c *cli) *cobra.Command {
	var skipWarm bool
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Warm the catalog and print the client metrics of this run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.app.Registry == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "metrics are disabled, set STOREFRONT_METRICS_ENABLED=true")
			}
			ctx := cmd.Context()
			if !skipWarm {
				// A signed-out shopper is fine here; only failures matter.
				if _, err := c.app.Session.CheckAuth(ctx); err != nil {
					return err
				}
				if err := c.app.Catalog.Prefetch(ctx); err != nil {
					return err
				}
			}

			families, err := c.app.Registry.Gather()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "gather metrics")
			}
			samples := flatten(families)
			return c.render(samples, func(w io.Writer) { printSamples(w, samples) })
		},
	}
	cmd.Flags().BoolVar(&skipWarm, "no-warm", false, "print without calling the backend first")
	return cmd
}

func flatten(families []*dto.MetricFamily) []metricSample {
	var out []metricSample
	for _, mf := range families {
		typ := strings.ToLower(mf.GetType().String())
		for _, m := range mf.GetMetric() {
			s := metricSample{Name: mf.GetName(), Type: typ}
			if pairs := m.GetLabel(); len(pairs) > 0 {
				s.Labels = make(map[string]string, len(pairs))
				for _, lp := range pairs {
					s.Labels[lp.GetName()] = lp.GetValue()
				}
			}
			switch {
			case m.GetCounter() != nil:
				s.Value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				s.Value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				s.Value = m.GetHistogram().GetSampleSum()
				s.Count = m.GetHistogram().GetSampleCount()
			}
			out = append(out, s)
		}
	}
	return out
}

func printSamples(w io.Writer, samples []metricSample) {
	if len(samples) == 0 {
		fmt.Fprintln(w, "no samples recorded")
		return
	}
	fmt.Fprintln(w, "NAME\tTYPE\tLABELS\tVALUE\tCOUNT")
	for _, s := range samples {
		count := ""
		if s.Type == "histogram" {
			count = fmt.Sprint(s.Count)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%s\n", s.Name, s.Type, labelString(s.Labels), s.Value, count)
	}
}

func labelString(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}
