package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metric names written by WriteMetrics.
const (
	MetricRowsInput    = "sensorclean_rows_input"
	MetricRowsOutput   = "sensorclean_rows_output"
	MetricRowsRemoved  = "sensorclean_rows_removed"
	MetricRunDuration  = "sensorclean_run_duration_seconds"
	MetricLastRunEpoch = "sensorclean_last_run_timestamp_seconds"
)

// WriteMetrics writes the reports in the Prometheus text exposition format,
// suitable for the node_exporter textfile collector.
func WriteMetrics(w io.Writer, reports ...*Report) error {
	families := map[string]*dto.MetricFamily{
		MetricRowsInput:    newGauge(MetricRowsInput, "Rows read per series."),
		MetricRowsOutput:   newGauge(MetricRowsOutput, "Rows remaining after cleaning per series."),
		MetricRowsRemoved:  newGauge(MetricRowsRemoved, "Rows removed per series and pipeline step."),
		MetricRunDuration:  newGauge(MetricRunDuration, "Time spent cleaning each series."),
		MetricLastRunEpoch: newGauge(MetricLastRunEpoch, "Start time of the last cleaning run per series."),
	}

	for _, r := range reports {
		if r == nil {
			continue
		}
		series := label("series", r.Series)
		addSample(families[MetricRowsInput], float64(r.Input), series)
		addSample(families[MetricRowsOutput], float64(r.Output), series)
		addSample(families[MetricRunDuration], r.Duration.Seconds(), series)
		addSample(families[MetricLastRunEpoch], float64(r.Started.Unix()), series)
		for _, sr := range r.Steps {
			addSample(families[MetricRowsRemoved], float64(sr.Removed()),
				series, label("step", sr.Name), label("filter", sr.Type))
		}
	}

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	for _, name := range names {
		mf := families[name]
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(bw, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", name, err)
		}
	}
	return bw.Flush()
}

// WriteMetricsFile writes the reports to path through a temporary file and a
// rename, so a collector never reads a partial file.
func WriteMetricsFile(path string, reports ...*Report) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteMetrics(tmp, reports...); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metrics file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename metrics file: %w", err)
	}
	return nil
}

func newGauge(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}

func addSample(mf *dto.MetricFamily, value float64, labels ...*dto.LabelPair) {
	mf.Metric = append(mf.Metric, &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: proto.Float64(value)},
	})
}
