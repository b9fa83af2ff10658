// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import "math"

// Elo returns the likely elo difference implied by ws/ds/ls results, along
// with its 95% confidence interval (muMin, muMax). This is reporting-only
// math: the arbiter surfaces these numbers alongside a cross-table, it does
// not use them to decide when to stop a tournament.
func Elo(ws, ds, ls int) (muMin, mu, muMax float64) {
	n := float64(ws + ds + ls)
	if n == 0 {
		return 0, 0, 0
	}

	w := float64(ws) / n
	d := float64(ds) / n
	l := float64(ls) / n

	mu = w + d/2
	sigma := math.Sqrt(w*math.Pow(1-mu, 2)+d*math.Pow(0.5-mu, 2)+l*math.Pow(0-mu, 2)) / math.Sqrt(n)

	muMin = mu + phiInv(0.025)*sigma
	muMax = mu + phiInv(0.975)*sigma

	return clampElo(muMin), clampElo(mu), clampElo(muMax)
}

// LLR computes the SPRT log-likelihood ratio of ws/ds/ls favouring elo1
// over elo0, for reporting next to a tournament's cross-table.
func LLR(ws, ds, ls int, elo0, elo1 float64) float64 {
	w, d, l := float64(ws)+0.5, float64(ds)+0.5, float64(ls)+0.5
	n := w + d + l

	_, dlo := wdlToElo(w/n, d/n, l/n)

	w0, d0, l0 := eloToWDL(elo0, dlo)
	w1, d1, l1 := eloToWDL(elo1, dlo)

	return w*math.Log(w1/w0) + d*math.Log(d1/d0) + l*math.Log(l1/l0)
}

// StoppingBounds converts the SPRT's type-1/type-2 error rates alpha/beta
// into the log-likelihood-ratio thresholds LLR must cross to accept
// (upper) or reject (lower) the elo1-over-elo0 hypothesis.
func StoppingBounds(alpha, beta float64) (lower, upper float64) {
	lower = math.Log(beta / (1 - alpha))
	upper = math.Log((1 - beta) / alpha)
	return lower, upper
}

func clampElo(x float64) float64 {
	if x <= 0 || x >= 1 {
		return 0
	}
	return -400 * math.Log10(1/x-1)
}

func eloToWDL(elo, dlo float64) (w, d, l float64) {
	w = 1 / (1 + math.Pow(10, (-elo+dlo)/400))
	l = 1 / (1 + math.Pow(10, (+elo+dlo)/400))
	d = 1 - w - l
	return w, d, l
}

func wdlToElo(w, d, l float64) (elo, dlo float64) {
	elo = 200 * math.Log10((w/l)*((1-l)/(1-w)))
	dlo = 200 * math.Log10(((1-l)/l)*((1-w)/w))
	return elo, dlo
}

func phiInv(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
