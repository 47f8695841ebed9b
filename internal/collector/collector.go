package collector

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	lru "github.com/hnlq715/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"

	"github.com/dsmirnov/containerstore/internal/containers"
	"github.com/dsmirnov/containerstore/internal/store"
)

// Collector exports container store metrics: per-class container counts,
// per-container disk usage and free space on the store filesystem.
type Collector struct {
	logger *zap.SugaredLogger
	store  *store.Store
	sizes  *lru.Cache
}

var _ prometheus.Collector = &Collector{}

func NewCollector(logger *zap.SugaredLogger, store *store.Store) *Collector {
	sizes, err := lru.NewWithExpire(1000, time.Minute)
	if err != nil {
		panic(err)
	}
	return &Collector{
		logger: logger,
		store:  store,
		sizes:  sizes,
	}
}

func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- containersMetric
	descs <- sizeMetric
	descs <- freeSpaceMetric
}

func (c *Collector) Collect(metricsChan chan<- prometheus.Metric) {
	ctx := logging.WithLogger(context.Background(), c.logger)

	if err := c.observe(ctx, metricsChan); err != nil {
		logging.L(ctx).Errorf("Failed to collect container store metrics: %s.", err)
	}
}

func (c *Collector) observe(ctx context.Context, metricsChan chan<- prometheus.Metric) error {
	entries, err := c.store.List(ctx)
	if err != nil {
		return err
	}

	counts := map[containers.Class]int{
		containers.ClassGeneric: 0,
		containers.ClassAppData: 0,
	}

	logging.L(ctx).Debugf("Container store:")

	for _, entry := range entries {
		container := entry.Container
		counts[container.Class]++

		size, err := c.getSize(container)
		if err != nil {
			logging.L(ctx).Errorf("Failed to calculate %q container size: %s.", container.Identifier, err)
			continue
		}

		logging.L(ctx).Debugf("* %s (%s): %d bytes", container.Identifier, container.Class, size)
		metricsChan <- prometheus.MustNewConstMetric(
			sizeMetric, prometheus.GaugeValue, float64(size),
			container.Identifier, string(container.Class))
	}

	classes := maps.Keys(counts)
	slices.Sort(classes)

	for _, class := range classes {
		metricsChan <- prometheus.MustNewConstMetric(
			containersMetric, prometheus.GaugeValue, float64(counts[class]), string(class))
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(c.store.Root(), &stat); err != nil {
		return xerrors.Errorf("Failed to stat %q filesystem: %w", c.store.Root(), err)
	}
	metricsChan <- prometheus.MustNewConstMetric(
		freeSpaceMetric, prometheus.GaugeValue, float64(stat.Bavail)*float64(stat.Bsize))

	return nil
}

func (c *Collector) getSize(container containers.Container) (int64, error) {
	if size, ok := c.sizes.Get(container.Path); ok {
		return size.(int64), nil
	}

	var size int64

	err := filepath.WalkDir(container.Path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.Type().IsRegular() {
			info, err := entry.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	c.sizes.Add(container.Path, size)
	return size, nil
}
