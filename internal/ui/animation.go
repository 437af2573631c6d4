package ui

import "math"

// scrollAnim eases the lyrics window from one top line to the next.
type scrollAnim struct {
	from     float64
	to       float64
	progress float64
}

const scrollTicks = 6

func (a *scrollAnim) retarget(top int) {
	a.from = a.position()
	a.to = float64(top)
	a.progress = 0
}

func (a *scrollAnim) jump(top int) {
	a.from = float64(top)
	a.to = float64(top)
	a.progress = 1
}

func (a *scrollAnim) step() {
	if a.progress < 1 {
		a.progress = math.Min(1, a.progress+1.0/scrollTicks)
	}
}

func (a *scrollAnim) settled() bool {
	return a.progress >= 1
}

func (a *scrollAnim) position() float64 {
	return lerp(a.from, a.to, easeOutCubic(a.progress))
}

func easeOutCubic(t float64) float64 {
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	return 1 - math.Pow(1-t, 3)
}

func lerp(a float64, b float64, t float64) float64 {
	return a + (b-a)*t
}
