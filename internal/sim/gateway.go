package sim

import (
	"fmt"
	"sort"
)

// RecordAPI marks an endpoint as hit on the mock gateway board.
func (s *Simulator) RecordAPI(endpoint, method string, statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordAPILocked(endpoint, method, statusCode)
}

// recordAPILocked upserts a mock gateway entry and writes an audit record.
func (s *Simulator) recordAPILocked(endpoint, method string, statusCode int) {
	e, ok := s.gateway[endpoint]
	if !ok {
		e = &GatewayRecord{Endpoint: endpoint}
		s.gateway[endpoint] = e
	}
	if method != "" {
		e.Method = method
	}
	if e.Method == "" {
		e.Method = "GET"
	}
	if statusCode == 0 {
		statusCode = 200
	}
	e.StatusCode = statusCode
	t := s.now()
	e.LastRequest = &t
	s.logLocked("api", fmt.Sprintf("%s %s -> %d", e.Method, endpoint, e.StatusCode), "", "API Gateway")
}

// Gateway returns the mock API gateway records sorted by endpoint.
func (s *Simulator) Gateway() []GatewayRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GatewayRecord, 0, len(s.gateway))
	for _, e := range s.gateway {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}
