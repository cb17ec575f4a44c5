package stats

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omniscale/tubemap/log"
)

// StartHttpPProf serves pprof and the pipeline metrics (/metrics) on bind.
func StartHttpPProf(bind string) {
	http.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	go func() {
		log.Println("[error]", http.ListenAndServe(bind, nil))
	}()
}
