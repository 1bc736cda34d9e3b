package progress

import "go.uber.org/zap"

// DefaultHz is the delivery rate used when PaceAtHz is not given.
const DefaultHz = 20

// PacerOption configures a Pacer.
type PacerOption func(*Pacer)

// PaceAtHz sets the maximum delivery rate in ticks per second. Values
// below 1 fall back to DefaultHz.
func PaceAtHz(hz int) PacerOption {
	return func(p *Pacer) {
		if hz >= 1 {
			p.hz = hz
		}
	}
}

// PaceWithHeartbeat makes the pacer redeliver the last forwarded snapshot
// on ticks where nothing changed. This drives a steady external animation
// cadence (spinners, repaint loops) even when the producer is quiet.
//
// Heartbeat is a deliberate exception to the no-redundant-delivery rule
// and is off by default; whether it's wanted depends entirely on the
// downstream consumer.
func PaceWithHeartbeat() PacerOption {
	return func(p *Pacer) {
		p.heartbeat = true
	}
}

// PaceWithLogger sets the logger used to record a delivery fault before
// the pacer fail-stops. The default is a no-op logger.
func PaceWithLogger(log *zap.Logger) PacerOption {
	return func(p *Pacer) {
		if log != nil {
			p.log = log
		}
	}
}
