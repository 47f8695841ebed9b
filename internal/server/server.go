package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func Start(logger *zap.SugaredLogger, addr string) error {
	http.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog:            prometheusLogger{logger: logger},
		DisableCompression:  true,
		MaxRequestsInFlight: 2,
	}))

	logger.Infof("Listening on %s.", addr)

	server := http.Server{
		Addr:         addr,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     log.New(httpLogger{logger: logger}, "", 0),
	}

	return server.ListenAndServe()
}

type httpLogger struct {
	logger *zap.SugaredLogger
}

func (l httpLogger) Write(data []byte) (n int, err error) {
	size := len(data)
	if size != 0 && data[size-1] == '\n' {
		data = data[:size-1]
	}

	l.logger.Errorf("HTTP server: %s", data)
	return size, nil
}

type prometheusLogger struct {
	logger *zap.SugaredLogger
}

func (l prometheusLogger) Println(v ...interface{}) {
	l.logger.Errorf("Prometheus: %s.", fmt.Sprintln(v...))
}
