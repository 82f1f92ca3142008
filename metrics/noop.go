// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// noopMetrics implements Metrics with no-op meters.
type noopMetrics struct{}

func defaultNoopMetrics() Metrics { return &noopMetrics{} }

type noopMeter struct{}

func (n *noopMeter) Add(int64)                             {}
func (n *noopMeter) AddWithLabel(int64, map[string]string) {}
func (n *noopMeter) Set(int64)                             {}
func (n *noopMeter) Observe(int64)                         {}

func (n *noopMetrics) GetOrCreateCountMeter(string) CountMeter { return &noopMeter{} }

func (n *noopMetrics) GetOrCreateCountVecMeter(string, []string) CountVecMeter { return &noopMeter{} }

func (n *noopMetrics) GetOrCreateGaugeMeter(string) GaugeMeter { return &noopMeter{} }

func (n *noopMetrics) GetOrCreateHistogramMeter(string, []int64) HistogramMeter { return &noopMeter{} }

func (n *noopMetrics) GetOrCreateHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})
}
