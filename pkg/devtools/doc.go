// Package devtools serves a scenario replay over HTTP.
//
// Routes:
//
//	GET  /healthz           liveness probe
//	GET  /api/tree          host tree (json, ?format=html or ?format=text)
//	GET  /api/ops           host ops, ?since=<seq> for the tail
//	POST /api/step          apply the next scenario step
//	POST /api/reset         remount the scenario from the start
//	GET  /api/trace         steps recorded so far (?format=text)
//	POST /api/traces        archive the current trace
//	GET  /api/traces        list archived traces
//	GET  /api/traces/{id}   fetch an archived trace
//	GET  /metrics           Prometheus metrics
//	GET  /ws                live stream of host ops and steps
//
// The player and everything it renders live on one scheduler.Loop; request
// handlers reach it through Loop.Call.
package devtools
