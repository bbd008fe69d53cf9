package envelope

import (
	"fmt"
	"strings"
)

// Topology identifies the phase sequence an envelope follows.
type Topology int

const (
	// TopologyADSR is the fully shaped attack-decay-sustain-release envelope.
	TopologyADSR Topology = iota
	// TopologyASR is a gate envelope without a decay phase.
	TopologyASR
	// TopologyAD is a trigger envelope without sustain or release.
	TopologyAD
)

var topologyNames = [...]string{
	TopologyADSR: "adsr",
	TopologyASR:  "asr",
	TopologyAD:   "ad",
}

// Topologies lists every supported topology in declaration order.
func Topologies() []Topology {
	return []Topology{TopologyADSR, TopologyASR, TopologyAD}
}

func (t Topology) valid() bool {
	return t >= TopologyADSR && t <= TopologyAD
}

func (t Topology) String() string {
	if !t.valid() {
		return fmt.Sprintf("Topology(%d)", int(t))
	}
	return topologyNames[t]
}

// ParseTopology resolves a case-insensitive topology name such as "adsr".
func ParseTopology(name string) (Topology, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range Topologies() {
		if topologyNames[t] == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTopology, name)
}

// Phase is the position of an envelope in its state machine.
type Phase int

const (
	// PhaseInactive is silent and waits for a trigger.
	PhaseInactive Phase = iota
	// PhaseAttack rises from silence.
	PhaseAttack
	// PhaseDecay falls from full scale.
	PhaseDecay
	// PhaseSustain holds the sustain level until release.
	PhaseSustain
	// PhaseRelease falls from the captured level to silence.
	PhaseRelease
)

var phaseNames = [...]string{
	PhaseInactive: "inactive",
	PhaseAttack:   "attack",
	PhaseDecay:    "decay",
	PhaseSustain:  "sustain",
	PhaseRelease:  "release",
}

func (p Phase) valid() bool {
	return p >= PhaseInactive && p <= PhaseRelease
}

func (p Phase) String() string {
	if !p.valid() {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Phases returns the timed and held phases t visits, in order.
func (t Topology) Phases() []Phase {
	switch t {
	case TopologyADSR:
		return []Phase{PhaseAttack, PhaseDecay, PhaseSustain, PhaseRelease}
	case TopologyASR:
		return []Phase{PhaseAttack, PhaseSustain, PhaseRelease}
	case TopologyAD:
		return []Phase{PhaseAttack, PhaseDecay}
	default:
		return nil
	}
}

// Uses reports whether phase p is part of topology t.
func (t Topology) Uses(p Phase) bool {
	for _, q := range t.Phases() {
		if q == p {
			return true
		}
	}
	return false
}
