package mpm

// Observer is notified after every completed step.
type Observer interface {
	OnStep(snap Snapshot)
}

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	Observe(snap Snapshot)
	Value() float64
	Reset()
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(snap Snapshot)

func (f ObserverFunc) OnStep(snap Snapshot) { f(snap) }
