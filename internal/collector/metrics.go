package collector

import (
	"github.com/dsmirnov/containerstore/internal/metrics"
)

var containersMetric = metrics.MakeDesc(
	"store", "containers", "Number of containers in the store.", "class")

var sizeMetric = metrics.MakeDesc(
	"store", "container_size_bytes", "Size of the container directory contents.", "identifier", "class")

var freeSpaceMetric = metrics.MakeDesc(
	"store", "free_space_bytes", "Free disk space on the store filesystem.")
