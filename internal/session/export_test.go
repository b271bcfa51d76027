package session

import "time"

func (s *MemoryStore) EvictIdle(cutoff time.Time) { s.evictIdle(cutoff) }
