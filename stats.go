package interceptor

import "sync/atomic"

// statsCounters is a best-effort, lock-free operational counter set,
// modeled on the teacher's ProxyMetrics. It is additive to the spec's
// data model and purely observational: nothing about filtering or
// mirroring decisions reads from it.
type statsCounters struct {
	admitted         int64
	dropped          int64
	mirroredBody     int64
	mirroredMetaOnly int64
	mirrorErrors     int64
}

func (s *statsCounters) incAdmitted()         { atomic.AddInt64(&s.admitted, 1) }
func (s *statsCounters) incDropped()          { atomic.AddInt64(&s.dropped, 1) }
func (s *statsCounters) incMirroredBody()     { atomic.AddInt64(&s.mirroredBody, 1) }
func (s *statsCounters) incMirroredMetaOnly() { atomic.AddInt64(&s.mirroredMetaOnly, 1) }
func (s *statsCounters) incMirrorErrors()     { atomic.AddInt64(&s.mirrorErrors, 1) }

// Stats is a point-in-time snapshot of interceptor activity.
type Stats struct {
	Admitted         int64
	Dropped          int64
	MirroredBody     int64
	MirroredMetaOnly int64
	MirrorErrors     int64
}

// Stats returns a snapshot of the interceptor's operational counters.
func (i *Interceptor) Stats() Stats {
	return Stats{
		Admitted:         atomic.LoadInt64(&i.stats.admitted),
		Dropped:          atomic.LoadInt64(&i.stats.dropped),
		MirroredBody:     atomic.LoadInt64(&i.stats.mirroredBody),
		MirroredMetaOnly: atomic.LoadInt64(&i.stats.mirroredMetaOnly),
		MirrorErrors:     atomic.LoadInt64(&i.stats.mirrorErrors),
	}
}
