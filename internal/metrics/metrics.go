package metrics

import "github.com/prometheus/client_golang/prometheus"

const Namespace = "containerstore"

func MakeDesc(subsystem string, name string, help string, labels ...string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(Namespace, subsystem, name), help, labels, nil)
}
